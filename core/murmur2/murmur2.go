package murmur2

import (
	"encoding/binary"
	"hash"

	"github.com/aviddiviner/go-murmur"
)

// Murmur2CF buffers its input with whitespace bytes removed and hashes it with seed 1 on Sum
type Murmur2CF struct {
	buf []byte
}

func New() hash.Hash32 {
	return &Murmur2CF{}
}

func isWhitespace(b byte) bool {
	return b == 9 || b == 10 || b == 13 || b == 32
}

func (m *Murmur2CF) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if !isWhitespace(b) {
			m.buf = append(m.buf, b)
		}
	}
	return len(p), nil
}

func (m *Murmur2CF) Sum(b []byte) []byte {
	sum := make([]byte, 4)
	binary.BigEndian.PutUint32(sum, m.Sum32())
	return append(b, sum...)
}

func (m *Murmur2CF) Reset() {
	m.buf = nil
}

func (m *Murmur2CF) Size() int {
	return 4
}

func (m *Murmur2CF) BlockSize() int {
	return 4
}

func (m *Murmur2CF) Sum32() uint32 {
	return murmur.MurmurHash2(m.buf, 1)
}
