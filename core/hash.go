package core

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"

	"github.com/leocov-dev/mrbulk/core/murmur2"
)

// GetHashImpl gets an implementation of hash.Hash for the given hash type string
func GetHashImpl(hashType string) (HashStringer, error) {
	switch strings.ToLower(hashType) {
	case "sha1":
		return &hexStringer{sha1.New()}, nil
	case "sha256":
		return &hexStringer{sha256.New()}, nil
	case "sha512":
		return &hexStringer{sha512.New()}, nil
	case "murmur2": // whitespace stripped fingerprint used by CurseForge
		return &number32As64Stringer{murmur2.New()}, nil
	case "length-bytes":
		return &number64Stringer{&LengthHasher{}}, nil
	}
	return nil, fmt.Errorf("hash implementation %s not found", hashType)
}

// IdentificationHashes are computed for every analyzed archive
var IdentificationHashes = []string{"sha1", "sha512", "murmur2"}

// ManifestHashes are recorded for every bundled artifact
var ManifestHashes = []string{"sha1", "sha512", "length-bytes"}

type HashStringer interface {
	hash.Hash
	String() string
}

type hexStringer struct {
	hash.Hash
}

func (h *hexStringer) String() string {
	return hex.EncodeToString(h.Sum(nil))
}

type number32As64Stringer struct {
	hash.Hash
}

func (h *number32As64Stringer) String() string {
	return strconv.FormatUint(uint64(binary.BigEndian.Uint32(h.Sum(nil))), 10)
}

type number64Stringer struct {
	hash.Hash
}

func (h *number64Stringer) String() string {
	return strconv.FormatUint(binary.BigEndian.Uint64(h.Sum(nil)), 10)
}

type LengthHasher struct {
	length uint64
}

func (h *LengthHasher) Write(p []byte) (n int, err error) {
	h.length += uint64(len(p))
	return len(p), nil
}

func (h *LengthHasher) Sum(b []byte) []byte {
	ext := append(b, make([]byte, 8)...)
	binary.BigEndian.PutUint64(ext[len(b):], h.length)
	return ext
}

func (h *LengthHasher) Size() int {
	return 8
}

func (h *LengthHasher) BlockSize() int {
	return 1
}

func (h *LengthHasher) Reset() {
	h.length = 0
}

// HashSet computes several hash types over the same stream
type HashSet struct {
	names   []string
	hashers []HashStringer
	w       io.Writer
}

func NewHashSet(hashTypes ...string) (*HashSet, error) {
	s := &HashSet{}
	writers := make([]io.Writer, 0, len(hashTypes))
	for _, t := range hashTypes {
		h, err := GetHashImpl(t)
		if err != nil {
			return nil, err
		}
		s.names = append(s.names, strings.ToLower(t))
		s.hashers = append(s.hashers, h)
		writers = append(writers, h)
	}
	s.w = io.MultiWriter(writers...)
	return s, nil
}

func (s *HashSet) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *HashSet) Sums() map[string]string {
	out := make(map[string]string, len(s.names))
	for i, name := range s.names {
		out[name] = s.hashers[i].String()
	}
	return out
}

// HashReader consumes r and returns its hashes keyed by hash type
func HashReader(r io.Reader, hashTypes ...string) (map[string]string, error) {
	set, err := NewHashSet(hashTypes...)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(set, r); err != nil {
		return nil, err
	}
	return set.Sums(), nil
}
