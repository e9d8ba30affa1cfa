package segment

import (
	"hash/fnv"
	"strconv"
)

// Hash computes the content hash used for unit change detection.
//
// FNV-1a over the full unit text. Collisions are accepted as a simplifying
// assumption: a colliding unit keeps serving cached suggestions until any
// other edit touches it.
func Hash(text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return strconv.FormatUint(h.Sum64(), 16)
}
