package badger

import "encoding/binary"

// Key prefixes for different data types
const (
	corpusEntryPrefix = "corent"
	corpusEntrySeq    = "corentseq"
	corpusModelKey    = "cormeta:model"
)

// makeCorpusEntryKey generates a key for a corpus entry by sequence
// number. The sequence is written in BigEndian order so lexicographic
// key order matches append order.
func makeCorpusEntryKey(seq uint64) []byte {
	prefix := corpusEntryPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}
