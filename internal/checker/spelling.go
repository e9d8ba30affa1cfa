package checker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sajari/fuzzy"

	"github.com/dshills/prosecheck/internal/segment"
)

// SpellingCheckerName is the scheduling category of the local spelling checker.
const SpellingCheckerName = "spelling-local"

// SpellingChecker is an offline spelling checker backed by a fuzzy language
// model trained from a word list. It is used when no remote spelling
// endpoint is configured.
type SpellingChecker struct {
	model *fuzzy.Model
}

// NewSpellingChecker trains a spelling checker from a newline-separated
// word list.
func NewSpellingChecker(wordList io.Reader) (*SpellingChecker, error) {
	model := fuzzy.NewModel()
	// Depth 2 trades accuracy for training and lookup speed.
	model.SetDepth(2)

	scanner := bufio.NewScanner(wordList)
	words := 0
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		model.TrainWord(strings.ToLower(word))
		words++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	if words == 0 {
		return nil, fmt.Errorf("word list is empty")
	}

	return &SpellingChecker{model: model}, nil
}

// NewSpellingCheckerFromFile trains a spelling checker from a dictionary file.
func NewSpellingCheckerFromFile(path string) (*SpellingChecker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return NewSpellingChecker(f)
}

// Name implements Checker.
func (c *SpellingChecker) Name() string { return SpellingCheckerName }

// Kind implements Checker.
func (c *SpellingChecker) Kind() Kind { return KindSpelling }

// Check implements Checker.
func (c *SpellingChecker) Check(ctx context.Context, units []segment.Unit) ([]RawSuggestion, error) {
	var out []RawSuggestion
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, w := range extractWords(u.Text) {
			correction, ok := c.lookup(w.text)
			if ok {
				continue
			}
			if correction == "" || strings.EqualFold(correction, w.text) {
				continue
			}
			out = append(out, RawSuggestion{
				UnitID:      u.ID,
				Text:        w.text,
				Replacement: matchCase(w.text, correction),
				Start:       w.start,
				End:         w.end,
				Kind:        KindSpelling,
				Description: fmt.Sprintf("%q may be misspelled", w.text),
			})
		}
	}
	return out, nil
}

// lookup returns the best correction and whether the word is already known.
func (c *SpellingChecker) lookup(word string) (string, bool) {
	lower := strings.ToLower(word)
	correction := c.model.SpellCheck(lower)
	return correction, correction == lower
}

// matchCase carries a leading capital from the original word into the
// replacement.
func matchCase(original, replacement string) string {
	r, size := utf8.DecodeRuneInString(original)
	if size == 0 || !unicode.IsUpper(r) {
		return replacement
	}
	first, firstSize := utf8.DecodeRuneInString(replacement)
	if firstSize == 0 {
		return replacement
	}
	return string(unicode.ToUpper(first)) + replacement[firstSize:]
}

// word is a token with byte offsets into the unit text.
type word struct {
	text  string
	start int64
	end   int64
}

// extractWords tokenizes text into words. A word is a run of letters and
// interior apostrophes.
func extractWords(text string) []word {
	var words []word
	start := -1
	for i, r := range text {
		switch {
		case unicode.IsLetter(r):
			if start < 0 {
				start = i
			}
		case r == '\'' && start >= 0:
			// Interior apostrophe stays in the word.
		default:
			if start >= 0 {
				words = appendWord(words, text, start, i)
				start = -1
			}
		}
	}
	if start >= 0 {
		words = appendWord(words, text, start, len(text))
	}
	return words
}

func appendWord(words []word, text string, start, end int) []word {
	// Trim a trailing apostrophe so "cats'" checks as "cats".
	for end > start && text[end-1] == '\'' {
		end--
	}
	if end <= start {
		return words
	}
	return append(words, word{text: text[start:end], start: int64(start), end: int64(end)})
}
