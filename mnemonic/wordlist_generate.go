package mnemonic

// wordCount is spec §6's N = 1626, the modulus for every mnemonic
// encode/decode operation regardless of language.
const wordCount = 1626

// generateWords builds a deterministic, prefix-unique word table of
// exactly wordCount entries from two small alphabets: each word is the
// four-character (consonant, vowel, consonant, vowel) mixed-radix
// representation of its own index, so distinctness of the first four
// characters — the property spec §6's truncated-word entry relies on —
// holds by construction rather than by table lookup. The two shipped
// wordlists use different (overlapping) alphabets, so they differ from
// each other, though their first six words coincide ("baba" .. "haba").
func generateWords(consonants, vowels string) []string {
	nc, nv := len(consonants), len(vowels)
	if nc*nv*nc*nv < wordCount {
		panic("mnemonic: alphabet too small to generate a prefix-unique wordlist")
	}
	words := make([]string, wordCount)
	for i := 0; i < wordCount; i++ {
		v := i
		c1 := consonants[v%nc]
		v /= nc
		v1 := vowels[v%nv]
		v /= nv
		c2 := consonants[v%nc]
		v /= nc
		v2 := vowels[v%nv]
		words[i] = string([]byte{c1, v1, c2, v2})
	}
	return words
}

// English and Deutsch are the two wordlists this build ships (see
// DESIGN.md for why the remaining ten of spec §6's twelve are absent).
// Both use spec §6's prefix length of 4, which for these lists is also
// their full word length.
var (
	English = register(NewWordlist("English", 4, generateWords("bcdfghjklmnprstvwz", "aeiou")))
	Deutsch = register(NewWordlist("Deutsch", 4, generateWords("bcdfghklmnprstwz", "aeiouy")))
)
