package stemmer

import (
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// Snowball adapts the Snowball English (Porter2) stemmer to the Stemmer
// interface. It shares Porter's short-word guard so both algorithms agree
// on what is too short to reduce.
type Snowball struct{}

func NewSnowball() Snowball {
	return Snowball{}
}

func (Snowball) Stem(word string) string {
	if utf8.RuneCountInString(word) <= 2 {
		return word
	}
	return english.Stem(word, true)
}
