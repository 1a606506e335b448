// Package stemmer reduces English words to a morphological root with an
// ordered series of suffix-stripping rules gated by syllable structure
// (the "measure" of a stem, i.e. its count of vowel-consonant sequences).
//
// Stemming never fails: words of two characters or fewer and words that are
// not purely alphabetic are returned unchanged. Re-stemming a stem may
// reduce it further; the reduction is not idempotent.
package stemmer

import (
	"strings"
	"unicode/utf8"
)

// Stemmer reduces a single word to its root.
type Stemmer interface {
	Stem(word string) string
}

// Dictionary reports whether a word is a recognised base form. When a
// Porter stemmer has one, reduction stops as soon as the word is known.
type Dictionary interface {
	Contains(word string) bool
}

// Porter is the rule-based stemmer. It is immutable after construction and
// safe for concurrent use.
type Porter struct {
	dict Dictionary
}

type Option func(*Porter)

// WithDictionary enables the base-word fast path and the final repair step.
func WithDictionary(d Dictionary) Option {
	return func(p *Porter) {
		p.dict = d
	}
}

func New(opts ...Option) *Porter {
	p := &Porter{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stem returns the root of word, folded to lowercase.
func (p *Porter) Stem(word string) string {
	if utf8.RuneCountInString(word) <= 2 {
		return word
	}
	w := strings.ToLower(word)
	if !isAlpha(w) {
		return word
	}

	steps := [...]func(string) string{
		StripPlural,
		StripPastTense,
		TerminalY,
		ReduceDerivational,
		ReduceFurther,
		RemoveEnding,
		Cleanup,
	}
	for _, step := range steps {
		if p.known(w) {
			break
		}
		w = step(w)
	}
	return p.repair(w)
}

func (p *Porter) known(w string) bool {
	return p.dict != nil && p.dict.Contains(w)
}

// repair restores a trailing e stripped from a known base word
// ("surpris" -> "surprise").
func (p *Porter) repair(w string) string {
	if p.dict == nil || p.dict.Contains(w) {
		return w
	}
	if p.dict.Contains(w + "e") {
		return w + "e"
	}
	return w
}

// StripPlural handles sses -> ss, ies -> i and a lone trailing s.
func StripPlural(w string) string {
	switch {
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ies"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ss"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}

// StripPastTense handles eed, ed and ing. Stems produced by dropping ed or
// ing are passed through FixupStem.
func StripPastTense(w string) string {
	switch {
	case strings.HasSuffix(w, "eed"):
		if Measure(w[:len(w)-3]) > 0 {
			return w[:len(w)-1]
		}
		return w
	case strings.HasSuffix(w, "ed"):
		if stem := w[:len(w)-2]; ContainsVowel(stem) {
			return FixupStem(stem)
		}
	case strings.HasSuffix(w, "ing"):
		if stem := w[:len(w)-3]; ContainsVowel(stem) {
			return FixupStem(stem)
		}
	}
	return w
}

// FixupStem repairs a stem left behind by StripPastTense: it restores an e
// after at, bl and iz, undoubles a final consonant other than l, s or z,
// and restores an e after a short cvc stem.
func FixupStem(stem string) string {
	switch {
	case strings.HasSuffix(stem, "at"), strings.HasSuffix(stem, "bl"), strings.HasSuffix(stem, "iz"):
		return stem + "e"
	case EndsWithDoubleConsonant(stem) && !strings.ContainsAny(stem[len(stem)-1:], "lsz"):
		return stem[:len(stem)-1]
	case Measure(stem) == 1 && CVC(stem):
		return stem + "e"
	}
	return stem
}

// TerminalY turns a final y into i when the rest of the word has a vowel.
func TerminalY(w string) string {
	if strings.HasSuffix(w, "y") {
		if stem := w[:len(w)-1]; ContainsVowel(stem) {
			return stem + "i"
		}
	}
	return w
}

func ReduceDerivational(w string) string {
	return replaceSuffix(w, derivationalSuffixes)
}

func ReduceFurther(w string) string {
	return replaceSuffix(w, furtherSuffixes)
}

func replaceSuffix(w string, table []replacement) string {
	for _, r := range table {
		if !strings.HasSuffix(w, r.suffix) {
			continue
		}
		stem := w[:len(w)-len(r.suffix)]
		if Measure(stem) > 0 {
			return stem + r.with
		}
	}
	return w
}

// RemoveEnding drops a common ending when the remaining stem has measure of
// at least one and is longer than four characters.
func RemoveEnding(w string) string {
	for _, suffix := range commonEndings {
		if !strings.HasSuffix(w, suffix) {
			continue
		}
		stem := w[:len(w)-len(suffix)]
		if Measure(stem) >= 1 && len(stem) >= minEndingStem {
			return stem
		}
	}
	return w
}

// Cleanup drops a final e from long enough stems and collapses a final ll.
func Cleanup(w string) string {
	if strings.HasSuffix(w, "e") {
		stem := w[:len(w)-1]
		m := Measure(stem)
		if m > 1 || (m == 1 && !CVC(stem)) {
			return stem
		}
	}
	if strings.HasSuffix(w, "ll") && Measure(w) > 1 {
		return w[:len(w)-1]
	}
	return w
}

func isAlpha(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}
