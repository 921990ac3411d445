// Package picker turns free text into a list of options and picks one of
// them at random.
package picker

import (
	"math/rand/v2"
	"strings"
)

// OptionList is an ordered list of options. No element is empty or
// whitespace-only.
type OptionList []string

// Source yields a uniformly distributed int in [0, n). *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize splits text into lines, trims each one and drops the lines that
// end up empty. Order is preserved and duplicates are kept. The result is
// never nil.
func Normalize(text string) OptionList {
	lines := strings.Split(lineBreaks.Replace(text), "\n")
	opts := make(OptionList, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			opts = append(opts, line)
		}
	}
	return opts
}

// Clean trims each element of opts and drops the ones that end up empty.
// Elements are never split, so every result is a trimmed element of opts.
// The result is never nil.
func Clean(opts []string) OptionList {
	cleaned := make(OptionList, 0, len(opts))
	for _, o := range opts {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	return cleaned
}

// Select returns an element of opts chosen uniformly at random. ok is false
// when opts is empty. A nil src uses the global generator.
func Select(opts OptionList, src Source) (picked string, ok bool) {
	if len(opts) == 0 {
		return "", false
	}
	if src == nil {
		src = globalSource{}
	}
	return opts[src.IntN(len(opts))], true
}

// Text joins the options back into the one-per-line form Normalize accepts.
func (o OptionList) Text() string {
	return strings.Join(o, "\n")
}

// Clone returns a copy that does not share storage with o.
func (o OptionList) Clone() OptionList {
	cp := make(OptionList, len(o))
	copy(cp, o)
	return cp
}
