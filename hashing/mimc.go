package hashing

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// stringChunkSize keeps every chunk of a string value strictly below the
// field modulus.
const stringChunkSize = fr.Bytes - 1

// MiMCHasher hashes with MiMC over the bn254 scalar field.
//
// In field element mode each value must already be a canonical element, that
// is, less than the modulus. In string mode each value is written as its
// length followed by its bytes in 31 byte chunks.
type MiMCHasher struct {
	encoding Encoding
}

func NewMiMC(opts ...Option) *MiMCHasher {
	o := newOptions(opts...)
	return &MiMCHasher{encoding: o.Encoding}
}

func (m *MiMCHasher) Name() string { return NameMiMC }

func (m *MiMCHasher) Encoding() Encoding { return m.encoding }

func (m *MiMCHasher) Hash(values ...string) (string, error) {
	var elements []fr.Element
	for i, v := range values {
		if m.encoding == EncodingString {
			elements = appendStringElements(elements, v)
			continue
		}
		e, err := parseElement(v)
		if err != nil {
			return "", fmt.Errorf("%w: %s value %d %q", err, NameMiMC, i, v)
		}
		elements = append(elements, e)
	}

	h := mimc.NewMiMC()
	for _, e := range elements {
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return "", err
		}
	}
	return hexutil.Encode(h.Sum(nil)), nil
}

func parseElement(value string) (fr.Element, error) {
	var e fr.Element
	b, err := parseUnsigned(value)
	if err != nil {
		return e, err
	}
	if b.Cmp(fr.Modulus()) >= 0 {
		return e, ErrInvalidFieldElement
	}
	e.SetBigInt(b)
	return e, nil
}

func appendStringElements(elements []fr.Element, value string) []fr.Element {
	var length fr.Element
	length.SetUint64(uint64(len(value)))
	elements = append(elements, length)

	data := []byte(value)
	for len(data) > 0 {
		n := min(stringChunkSize, len(data))
		var e fr.Element
		e.SetBytes(data[:n])
		elements = append(elements, e)
		data = data[n:]
	}
	return elements
}
