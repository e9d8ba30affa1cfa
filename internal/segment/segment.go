package segment

// Unit is an offset-stable slice of the document used as the atomic granule
// for analysis and caching. Units are ephemeral: they are recomputed fresh
// from the current document content on every analysis pass.
type Unit struct {
	ID    int    // Position of the unit within the pass (0-based)
	Text  string // Exact document text for [Start, End)
	Hash  string // Content hash of Text
	Start int64  // Byte offset of the unit start
	End   int64  // Byte offset of the unit end (exclusive)
}

// Strategy selects how the document is cut into units.
type Strategy int

const (
	// StrategySentence splits on runs of sentence-ending punctuation.
	// Trailing unterminated text becomes a final unit.
	StrategySentence Strategy = iota

	// StrategyWordWindow emits a unit every N words or at sentence-ending
	// punctuation, whichever comes first.
	StrategyWordWindow
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyWordWindow:
		return "word-window"
	default:
		return "sentence"
	}
}

// ParseStrategy parses a configuration string into a Strategy.
// Unknown values fall back to StrategySentence.
func ParseStrategy(s string) Strategy {
	if s == "word-window" {
		return StrategyWordWindow
	}
	return StrategySentence
}

// DefaultWindowWords is the default word-window size.
const DefaultWindowWords = 20

// Segmenter cuts document text into units using a configured strategy.
type Segmenter struct {
	strategy    Strategy
	windowWords int
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithStrategy sets the segmentation strategy.
func WithStrategy(s Strategy) Option {
	return func(sg *Segmenter) {
		sg.strategy = s
	}
}

// WithWindowWords sets the word-window size for StrategyWordWindow.
func WithWindowWords(n int) Option {
	return func(sg *Segmenter) {
		if n > 0 {
			sg.windowWords = n
		}
	}
}

// NewSegmenter creates a Segmenter. The default strategy is sentence-based.
func NewSegmenter(opts ...Option) *Segmenter {
	sg := &Segmenter{
		strategy:    StrategySentence,
		windowWords: DefaultWindowWords,
	}
	for _, opt := range opts {
		opt(sg)
	}
	return sg
}

// Segment cuts text into units. The units are non-overlapping, ordered, and
// their concatenated Text reconstructs text exactly.
func (sg *Segmenter) Segment(text string) []Unit {
	if text == "" {
		return nil
	}

	var cuts []int
	switch sg.strategy {
	case StrategyWordWindow:
		cuts = wordWindowCuts(text, sg.windowWords)
	default:
		cuts = sentenceCuts(text)
	}

	units := make([]Unit, 0, len(cuts)+1)
	start := 0
	for _, end := range cuts {
		units = appendUnit(units, text, start, end)
		start = end
	}
	// Trailing unterminated text becomes the final unit.
	units = appendUnit(units, text, start, len(text))
	return units
}

// WholeDocument returns the single-unit fallback used when segmentation
// cannot be trusted.
func WholeDocument(text string) []Unit {
	if text == "" {
		return nil
	}
	return []Unit{{
		ID:    0,
		Text:  text,
		Hash:  Hash(text),
		Start: 0,
		End:   int64(len(text)),
	}}
}

func appendUnit(units []Unit, text string, start, end int) []Unit {
	if start >= end {
		return units
	}
	ut := text[start:end]
	return append(units, Unit{
		ID:    len(units),
		Text:  ut,
		Hash:  Hash(ut),
		Start: int64(start),
		End:   int64(end),
	})
}

// sentenceCuts returns cut offsets after each run of sentence terminators.
func sentenceCuts(text string) []int {
	var cuts []int
	for i := 0; i < len(text); i++ {
		if isTerminator(text[i]) && (i+1 == len(text) || !isTerminator(text[i+1])) {
			cuts = append(cuts, i+1)
		}
	}
	return cuts
}

// wordWindowCuts returns cut offsets after every n words or after a
// terminator run, whichever comes first. Cuts at word boundaries fall before
// the following whitespace so no bytes are dropped.
func wordWindowCuts(text string, n int) []int {
	var cuts []int
	words := 0
	inWord := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if isTerminator(c) && (i+1 == len(text) || !isTerminator(text[i+1])) {
			cuts = append(cuts, i+1)
			words = 0
			inWord = false
			continue
		}
		if isSpace(c) {
			if inWord {
				words++
				inWord = false
				if words >= n {
					cuts = append(cuts, i)
					words = 0
				}
			}
			continue
		}
		inWord = true
	}
	return cuts
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
