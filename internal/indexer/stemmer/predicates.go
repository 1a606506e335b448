package stemmer

// consonants classifies every byte of w left to right. A y is a consonant
// at the start of a word or after a vowel, and a vowel after a consonant.
func consonants(w string) []bool {
	mask := make([]bool, len(w))
	for i := 0; i < len(w); i++ {
		switch w[i] {
		case 'a', 'e', 'i', 'o', 'u':
			mask[i] = false
		case 'y':
			mask[i] = i == 0 || !mask[i-1]
		default:
			mask[i] = true
		}
	}
	return mask
}

// IsConsonant reports whether the byte at position i of w is a consonant.
// Out-of-range positions are not consonants.
func IsConsonant(w string, i int) bool {
	if i < 0 || i >= len(w) {
		return false
	}
	return consonants(w[:i+1])[i]
}

// Measure counts the consonant sequences in w that follow a vowel sequence.
func Measure(w string) int {
	m := 0
	prevVowel := false
	for _, c := range consonants(w) {
		if !c {
			prevVowel = true
		} else if prevVowel {
			m++
			prevVowel = false
		}
	}
	return m
}

func ContainsVowel(w string) bool {
	for _, c := range consonants(w) {
		if !c {
			return true
		}
	}
	return false
}

func EndsWithDoubleConsonant(w string) bool {
	n := len(w)
	if n < 2 || w[n-1] != w[n-2] {
		return false
	}
	return consonants(w)[n-1]
}

// CVC reports whether w ends consonant-vowel-consonant with a final letter
// other than w, x or y.
func CVC(w string) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	mask := consonants(w)
	return mask[n-3] && !mask[n-2] && mask[n-1]
}
