// Package hashing provides the hash functions an accumulator can be built
// over.
//
// A Hasher turns an ordered list of string encoded values into a single
// digest string. How each value is fed to the underlying hash is chosen once,
// at construction, by the Encoding, and can not be changed afterwards.
package hashing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFieldElement = errors.New("value is not a valid field element")
	ErrUnknownHasher       = errors.New("unknown hasher")
)

// Encoding selects how values are written to the hash.
type Encoding int

const (
	// EncodingString writes each value's bytes, length prefixed.
	EncodingString Encoding = iota
	// EncodingFieldElement parses each value as an unsigned integer, decimal
	// or 0x prefixed hex, and writes it as a fixed width field element.
	EncodingFieldElement
)

func (e Encoding) String() string {
	switch e {
	case EncodingString:
		return "string"
	case EncodingFieldElement:
		return "field-element"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Hasher is the hash capability consumed by the accumulator.
type Hasher interface {
	// Hash returns the digest of values, in order. Hash with no values is
	// well defined and is used for the root of an empty accumulator.
	Hash(values ...string) (string, error)
	Encoding() Encoding
	Name() string
}

type Options struct {
	Encoding Encoding
}

type Option func(*Options)

func WithEncoding(encoding Encoding) Option {
	return func(o *Options) {
		o.Encoding = encoding
	}
}

// WithFieldElements is shorthand for WithEncoding(EncodingFieldElement)
func WithFieldElements() Option {
	return WithEncoding(EncodingFieldElement)
}

func newOptions(opts ...Option) Options {
	o := Options{Encoding: EncodingString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

const (
	NameSHA256     = "sha256"
	NameKeccak256  = "keccak256"
	NameBlake2b256 = "blake2b256"
	NameMiMC       = "mimc-bn254"
)

// New returns the hasher registered under name. Names are case insensitive.
func New(name string, opts ...Option) (Hasher, error) {
	switch strings.ToLower(name) {
	case NameSHA256:
		return NewSHA256(opts...), nil
	case NameKeccak256, "keccak":
		return NewKeccak256(opts...), nil
	case NameBlake2b256, "blake2b":
		return NewBlake2b256(opts...), nil
	case NameMiMC, "mimc":
		return NewMiMC(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownHasher, name)
	}
}
