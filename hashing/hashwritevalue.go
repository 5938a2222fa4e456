package hashing

import (
	"encoding/binary"
	"hash"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// HashWriteUint64 writes a uint64 to a hasher in bigendian layout - most
// significant byte at lowest address/storage location
func HashWriteUint64(hasher hash.Hash, value uint64) {
	b := [8]byte{}
	binary.BigEndian.PutUint64(b[:], value)
	hasher.Write(b[:])
}

// HashWriteString writes the length of value followed by its bytes, so that
// ("ab", "c") and ("a", "bc") hash differently.
func HashWriteString(hasher hash.Hash, value string) {
	HashWriteUint64(hasher, uint64(len(value)))
	hasher.Write([]byte(value))
}

// HashWriteWord writes value as a 32 byte big endian word.
func HashWriteWord(hasher hash.Hash, value string) error {
	word, err := ParseWord(value)
	if err != nil {
		return err
	}
	b := word.Bytes32()
	hasher.Write(b[:])
	return nil
}

// ParseWord parses an unsigned integer of at most 256 bits. Hex must be 0x
// prefixed, anything else is decimal. Leading zeros are not treated as octal.
func ParseWord(value string) (*uint256.Int, error) {
	b, err := parseUnsigned(value)
	if err != nil {
		return nil, err
	}
	word, overflow := uint256.FromBig(b)
	if overflow {
		return nil, ErrInvalidFieldElement
	}
	return word, nil
}

func parseUnsigned(value string) (*big.Int, error) {
	digits, base := value, 10
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		digits, base = value[2:], 16
	}
	if digits == "" {
		return nil, ErrInvalidFieldElement
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok || b.Sign() < 0 {
		return nil, ErrInvalidFieldElement
	}
	return b, nil
}
