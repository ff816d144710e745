package far

import (
	"strings"
	"unicode"
)

// DefaultPunctuation is the mark set normalization acts on when none is
// configured.
const DefaultPunctuation = ".,?"

// Normalize controls corpus text normalization before tokenization.
// Zero value: no case folding, punctuation kept as written.
type Normalize struct {
	// Lowercase folds case before tokenizing.
	Lowercase bool
	// RemovePunctuation strips the punctuation marks entirely.
	RemovePunctuation bool
	// SeparatePunctuation inserts a space before a mark that trails a
	// word, so it tokenizes as a standalone unit.
	SeparatePunctuation bool
	// PunctuationMarks is the mark set the two options above act on;
	// empty means DefaultPunctuation.
	PunctuationMarks string
}

func (n Normalize) marks() string {
	if n.PunctuationMarks == "" {
		return DefaultPunctuation
	}
	return n.PunctuationMarks
}

// Apply normalizes one corpus line. Whitespace runs collapse to single
// spaces; the option order (separate, remove, lowercase) matches the
// upstream text processing chain.
func (n Normalize) Apply(line string) string {
	if n.SeparatePunctuation {
		line = separatePunctuation(line, n.marks())
	}
	if n.RemovePunctuation {
		line = removePunctuation(line, n.marks())
	}
	if n.Lowercase {
		line = strings.ToLower(line)
	}
	return strings.Join(strings.Fields(line), " ")
}

func separatePunctuation(line, marks string) string {
	var b strings.Builder
	b.Grow(len(line) + 8)
	prev := ' '
	for _, r := range line {
		if strings.ContainsRune(marks, r) && !unicode.IsSpace(prev) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func removePunctuation(line, marks string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(marks, r) {
			return -1
		}
		return r
	}, line)
}
