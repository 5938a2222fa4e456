package accumulator

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(err)
	}
}

// EncodeProof returns the deterministic CBOR encoding of proof
func EncodeProof(proof Proof) ([]byte, error) {
	return encMode.Marshal(proof)
}

func DecodeProof(data []byte) (Proof, error) {
	var proof Proof
	if err := decMode.Unmarshal(data, &proof); err != nil {
		return Proof{}, fmt.Errorf("%w: %w", ErrProofDecode, err)
	}
	return proof, nil
}

func EncodeConsistencyProof(proof ConsistencyProof) ([]byte, error) {
	return encMode.Marshal(proof)
}

func DecodeConsistencyProof(data []byte) (ConsistencyProof, error) {
	var proof ConsistencyProof
	if err := decMode.Unmarshal(data, &proof); err != nil {
		return ConsistencyProof{}, fmt.Errorf("%w: %w", ErrProofDecode, err)
	}
	return proof, nil
}
