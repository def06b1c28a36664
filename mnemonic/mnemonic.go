package mnemonic

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/mxhess/salvium-walletcore/walleterr"
)

// SeedSize is the width of the master secret a mnemonic phrase encodes
// (spec §3's 32-byte MasterSecret).
const SeedSize = 32

// dataWords is the number of words carrying entropy; one checksum word is
// appended to make the 25-word phrase spec §6 describes.
const dataWords = 24

var (
	ErrWrongWordCount   = errors.New("mnemonic: phrase does not have exactly 25 words")
	ErrChecksumMismatch = errors.New("mnemonic: checksum word does not match the derived checksum")
)

// Encode turns a 32-byte seed into a 25-word phrase over wl: each 4-byte
// little-endian group of seed produces three words by the base-N
// wraparound scheme of spec §6, followed by one checksum word chosen from
// among the 24 data words.
func Encode(seed [SeedSize]byte, wl *Wordlist) (string, error) {
	n := uint64(wl.Len())
	words := make([]string, 0, dataWords+1)

	for i := 0; i < SeedSize; i += 4 {
		v := uint64(binary.LittleEndian.Uint32(seed[i : i+4]))
		w1 := v % n
		q1 := v / n
		w2 := (q1 + w1) % n
		q2 := q1 / n
		w3 := (q2 + w2) % n
		words = append(words, wl.Words[w1], wl.Words[w2], wl.Words[w3])
	}

	checksumIdx := checksumIndex(words, wl.PrefixLen)
	words = append(words, words[checksumIdx])
	return strings.Join(words, " "), nil
}

// Decode recovers the 32-byte seed a phrase encodes, validating its
// checksum word against the other 24 first.
func Decode(phrase string, wl *Wordlist) ([SeedSize]byte, error) {
	var seed [SeedSize]byte
	fields := strings.Fields(phrase)
	if len(fields) != dataWords+1 {
		return seed, walleterr.New(walleterr.KindChecksumMismatch, fmt.Errorf("%w: got %d", ErrWrongWordCount, len(fields)))
	}
	dataFields := fields[:dataWords]

	resolved := make([]string, dataWords)
	indices := make([]uint64, dataWords)
	for i, f := range dataFields {
		idx, err := wl.indexOf(f)
		if err != nil {
			return seed, err
		}
		resolved[i] = wl.Words[idx]
		indices[i] = uint64(idx)
	}

	wantIdx := checksumIndex(resolved, wl.PrefixLen)
	got, err := wl.indexOf(fields[dataWords])
	if err != nil {
		return seed, err
	}
	if resolved[wantIdx] != wl.Words[got] {
		return seed, walleterr.New(walleterr.KindChecksumMismatch, ErrChecksumMismatch)
	}

	n := uint64(wl.Len())
	for group := 0; group < dataWords/3; group++ {
		w1 := indices[group*3]
		w2 := indices[group*3+1]
		w3 := indices[group*3+2]
		d1 := (w2 - w1 + n) % n
		q2 := (w3 - w2 + n) % n
		v := q2*n*n + d1*n + w1
		binary.LittleEndian.PutUint32(seed[group*4:group*4+4], uint32(v))
	}
	return seed, nil
}

// checksumIndex computes CRC32(concat(prefix_of_each_word)) mod
// len(words), spec §6's rule for which of the 24 data words is repeated
// as the trailing checksum word.
func checksumIndex(words []string, prefixLen int) int {
	var buf strings.Builder
	for _, w := range words {
		if len(w) < prefixLen {
			buf.WriteString(w)
			continue
		}
		buf.WriteString(w[:prefixLen])
	}
	sum := crc32.ChecksumIEEE([]byte(buf.String()))
	return int(sum % uint32(len(words)))
}
