package murmur2

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMurmur2CF_Write(t *testing.T) {
	m := New().(*Murmur2CF)

	n, err := m.Write([]byte("Hello, World!\t\n\r "))
	assert.NoError(t, err)
	// the full input length is reported even though whitespace is dropped
	assert.Equal(t, 17, n)
	assert.Equal(t, []byte("Hello,World!"), m.buf)

	_, _ = m.Write([]byte(" More data"))
	assert.Equal(t, []byte("Hello,World!Moredata"), m.buf)
}

func TestMurmur2CF_WhitespaceHandling(t *testing.T) {
	want := func() uint32 {
		m := New()
		_, _ = m.Write([]byte("HelloWorld"))
		return m.Sum32()
	}()

	cases := []struct {
		name  string
		input string
	}{
		{"With spaces", "Hello World"},
		{"With tab", "Hello\tWorld"},
		{"With newline", "Hello\nWorld"},
		{"With carriage return", "Hello\rWorld"},
		{"Mixed whitespace", "Hello \t\n\rWorld"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			_, _ = m.Write([]byte(tc.input))
			assert.Equal(t, want, m.Sum32())
		})
	}
}

func TestMurmur2CF_Sum(t *testing.T) {
	m := New()
	_, _ = m.Write([]byte("Hello, World!"))

	sum := m.Sum(nil)
	assert.Len(t, sum, 4)
	assert.Equal(t, m.Sum32(), binary.BigEndian.Uint32(sum))

	prefixed := m.Sum([]byte{1, 2})
	assert.Equal(t, []byte{1, 2}, prefixed[:2])
	assert.Equal(t, sum, prefixed[2:])
}

func TestMurmur2CF_Reset(t *testing.T) {
	empty := New().Sum32()

	m := New()
	_, _ = m.Write([]byte("Hello, World!"))
	assert.NotEqual(t, empty, m.Sum32())

	m.Reset()
	assert.Equal(t, empty, m.Sum32())
	assert.Equal(t, 4, m.Size())
	assert.Equal(t, 4, m.BlockSize())
}
