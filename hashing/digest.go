package hashing

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// DigestHasher adapts a standard byte oriented hash.Hash. Digests are 0x
// prefixed lower case hex, which also parse as field elements, so hashes can
// be fed back in regardless of the encoding.
type DigestHasher struct {
	name     string
	newHash  func() hash.Hash
	encoding Encoding
}

func NewSHA256(opts ...Option) *DigestHasher {
	return newDigestHasher(NameSHA256, sha256.New, opts...)
}

func NewKeccak256(opts ...Option) *DigestHasher {
	return newDigestHasher(NameKeccak256, sha3.NewLegacyKeccak256, opts...)
}

func NewBlake2b256(opts ...Option) *DigestHasher {
	return newDigestHasher(NameBlake2b256, func() hash.Hash {
		// New256 only fails for oversized keys
		h, _ := blake2b.New256(nil)
		return h
	}, opts...)
}

func newDigestHasher(name string, newHash func() hash.Hash, opts ...Option) *DigestHasher {
	o := newOptions(opts...)
	return &DigestHasher{
		name:     name,
		newHash:  newHash,
		encoding: o.Encoding,
	}
}

func (d *DigestHasher) Name() string { return d.name }

func (d *DigestHasher) Encoding() Encoding { return d.encoding }

// Hash is safe for concurrent use, each call uses a fresh hash.Hash
func (d *DigestHasher) Hash(values ...string) (string, error) {
	h := d.newHash()
	for i, v := range values {
		if d.encoding == EncodingString {
			HashWriteString(h, v)
			continue
		}
		if err := HashWriteWord(h, v); err != nil {
			return "", fmt.Errorf("%w: %s value %d %q", err, d.name, i, v)
		}
	}
	return hexutil.Encode(h.Sum(nil)), nil
}
