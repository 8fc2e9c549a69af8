package core

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashImpl(t *testing.T) {
	tests := []struct {
		name     string
		hashType string
		wantErr  bool
	}{
		{"SHA1", "sha1", false},
		{"SHA1 uppercase", "SHA1", false},
		{"SHA256", "sha256", false},
		{"SHA512", "sha512", false},
		{"Murmur2", "murmur2", false},
		{"Length-bytes", "length-bytes", false},
		{"Invalid hash", "invalid-hash", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetHashImpl(tt.hashType)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, got)
			}
		})
	}
}

func TestHexStringer(t *testing.T) {
	data := []byte("test data")
	sha1Sum := sha1.Sum(data)
	sha512Sum := sha512.Sum512(data)

	tests := []struct {
		name     string
		hashType string
		want     string
	}{
		{"SHA1", "sha1", hex.EncodeToString(sha1Sum[:])},
		{"SHA512", "sha512", hex.EncodeToString(sha512Sum[:])},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher, err := GetHashImpl(tt.hashType)
			require.NoError(t, err)

			_, err = hasher.Write(data)
			require.NoError(t, err)

			assert.Equal(t, tt.want, hasher.String())
		})
	}
}

func TestNumber32As64Stringer(t *testing.T) {
	hasher, err := GetHashImpl("murmur2")
	require.NoError(t, err)

	_, err = hasher.Write([]byte("test data"))
	require.NoError(t, err)

	// Verify it's a number by checking if it can be parsed
	n, err := strconv.ParseUint(hasher.String(), 10, 64)
	assert.NoError(t, err)
	assert.LessOrEqual(t, n, uint64(1<<32-1))
}

func TestLengthHasher(t *testing.T) {
	t.Run("Multiple writes", func(t *testing.T) {
		hasher, err := GetHashImpl("length-bytes")
		require.NoError(t, err)

		n, err := hasher.Write([]byte("first chunk"))
		assert.NoError(t, err)
		assert.Equal(t, 11, n)

		_, err = hasher.Write([]byte("second chunk"))
		assert.NoError(t, err)

		assert.Equal(t, "23", hasher.String())
	})

	t.Run("Sum appends", func(t *testing.T) {
		lengthHasher := &LengthHasher{}
		_, _ = lengthHasher.Write([]byte("abc"))

		sum := lengthHasher.Sum([]byte{0xff})
		require.Len(t, sum, 9)
		assert.Equal(t, byte(0xff), sum[0])
		assert.Equal(t, uint64(3), binary.BigEndian.Uint64(sum[1:]))
	})

	t.Run("Reset functionality", func(t *testing.T) {
		lengthHasher := &LengthHasher{}

		_, err := lengthHasher.Write([]byte("test data"))
		assert.NoError(t, err)

		lengthHasher.Reset()

		buffer := new(bytes.Buffer)
		sum := lengthHasher.Sum(buffer.Bytes())

		assert.Equal(t, uint64(0), binary.BigEndian.Uint64(sum))
		assert.Equal(t, 8, lengthHasher.Size())
		assert.Equal(t, 1, lengthHasher.BlockSize())
	})
}

func TestHashReader(t *testing.T) {
	data := "some archive contents"
	sums, err := HashReader(strings.NewReader(data), ManifestHashes...)
	require.NoError(t, err)

	sha1Sum := sha1.Sum([]byte(data))
	assert.Equal(t, hex.EncodeToString(sha1Sum[:]), sums["sha1"])
	assert.Equal(t, strconv.Itoa(len(data)), sums["length-bytes"])
	assert.Len(t, sums["sha512"], 128)

	_, err = HashReader(strings.NewReader(data), "crc")
	assert.Error(t, err)
}

func TestHashSetIgnoresWhitespaceForFingerprint(t *testing.T) {
	a, err := HashReader(strings.NewReader("Hello World"), IdentificationHashes...)
	require.NoError(t, err)
	b, err := HashReader(strings.NewReader("Hello\n\tWorld"), IdentificationHashes...)
	require.NoError(t, err)

	assert.Equal(t, a["murmur2"], b["murmur2"])
	assert.NotEqual(t, a["sha1"], b["sha1"])
}
