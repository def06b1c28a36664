// Package mnemonic implements the CryptoNote 25-word seed phrase codec of
// spec §6: 24 data words plus one checksum word, encoded three words at a
// time from each 4-byte group of a 32-byte seed using a base-1626
// wraparound scheme, over a caller-selected wordlist.
package mnemonic

import (
	"errors"
	"fmt"

	"github.com/mxhess/salvium-walletcore/walleterr"
)

// Wordlist is one language's word table: N words (spec's formulas assume a
// fixed N per list) plus the prefix length that language uses to
// disambiguate a truncated word during decoding.
type Wordlist struct {
	Name      string
	PrefixLen int
	Words     []string

	byPrefix map[string]int
	byWord   map[string]int
}

var (
	ErrDuplicatePrefix = errors.New("mnemonic: two words share the same unique prefix")
	ErrUnknownWord     = errors.New("mnemonic: word is not in this wordlist, even by prefix")
)

// NewWordlist builds a Wordlist and indexes it for decoding, rejecting any
// list whose words are not uniquely identified by their first prefixLen
// characters — the property spec §6's truncated-word entry UX depends on.
func NewWordlist(name string, prefixLen int, words []string) (*Wordlist, error) {
	wl := &Wordlist{
		Name:      name,
		PrefixLen: prefixLen,
		Words:     words,
		byPrefix:  make(map[string]int, len(words)),
		byWord:    make(map[string]int, len(words)),
	}
	for i, w := range words {
		if len(w) < prefixLen {
			return nil, walleterr.New(walleterr.KindInternal, fmt.Errorf("mnemonic: word %q shorter than prefix length %d", w, prefixLen))
		}
		prefix := w[:prefixLen]
		if _, dup := wl.byPrefix[prefix]; dup {
			return nil, walleterr.New(walleterr.KindInternal, fmt.Errorf("%w: %q", ErrDuplicatePrefix, prefix))
		}
		wl.byPrefix[prefix] = i
		wl.byWord[w] = i
	}
	return wl, nil
}

// Len is N, the modulus every encode/decode operation reduces against.
func (wl *Wordlist) Len() int { return len(wl.Words) }

// indexOf resolves a word typed by a user (which may be the full word or
// just its unique prefix) back to its position in the list.
func (wl *Wordlist) indexOf(word string) (int, error) {
	if i, ok := wl.byWord[word]; ok {
		return i, nil
	}
	if len(word) >= wl.PrefixLen {
		if i, ok := wl.byPrefix[word[:wl.PrefixLen]]; ok {
			return i, nil
		}
	}
	return 0, walleterr.New(walleterr.KindChecksumMismatch, fmt.Errorf("%w: %q", ErrUnknownWord, word))
}

// Registry is the set of wordlists this build ships. spec §6 calls for 12
// languages; only the lists actually populated here (see DESIGN.md for
// why the rest are absent) are usable, keyed by Wordlist.Name.
var Registry = map[string]*Wordlist{}

func register(wl *Wordlist, err error) *Wordlist {
	if err != nil {
		panic(err)
	}
	Registry[wl.Name] = wl
	return wl
}
