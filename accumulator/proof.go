package accumulator

import (
	"context"
	"fmt"

	"github.com/forestrie/go-mmrkv/mmr"
	"golang.org/x/sync/errgroup"
)

// Proof is an inclusion proof for a single leaf, self contained for
// verification against RootHash.
type Proof struct {
	ElementIndex uint64 `cbor:"1,keyasint"`
	ElementHash  string `cbor:"2,keyasint"`
	// Siblings is the authentication path from the leaf up to, but excluding,
	// its peak
	Siblings []string `cbor:"3,keyasint"`
	// Peaks are all the peaks of the mmr at ElementsCount, left to right
	Peaks         []string `cbor:"4,keyasint"`
	ElementsCount uint64   `cbor:"5,keyasint"`
	RootHash      string   `cbor:"6,keyasint"`
}

// proofConcurrency bounds the parallel store reads made by GetProofs
const proofConcurrency = 8

// GetProof returns the inclusion proof for the leaf at elementIndex against
// the current size, or the size selected with WithElementsCount.
func (m *MMR) GetProof(ctx context.Context, elementIndex uint64, opts ...ProofOption) (Proof, error) {
	size, err := m.resolveSize(ctx, opts...)
	if err != nil {
		return Proof{}, err
	}
	return m.getProof(ctx, elementIndex, size)
}

func (m *MMR) getProof(ctx context.Context, elementIndex uint64, size uint64) (Proof, error) {
	if elementIndex == 0 || elementIndex > size {
		return Proof{}, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidIndex, elementIndex, size)
	}
	if !mmr.IsLeaf(elementIndex) {
		return Proof{}, fmt.Errorf("%w: %d", ErrNotLeaf, elementIndex)
	}

	siblings, err := mmr.FindSiblings(elementIndex, size)
	if err != nil {
		return Proof{}, err
	}
	peaks := mmr.FindPeaks(size)

	// one read for everything the proof references
	positions := make([]uint64, 0, 1+len(siblings)+len(peaks))
	positions = append(positions, elementIndex)
	positions = append(positions, siblings...)
	positions = append(positions, peaks...)
	hashes, err := m.nodeHashes(ctx, m.store, positions)
	if err != nil {
		return Proof{}, err
	}

	proof := Proof{
		ElementIndex:  elementIndex,
		ElementHash:   hashes[0],
		Siblings:      hashes[1 : 1+len(siblings) : 1+len(siblings)],
		Peaks:         hashes[1+len(siblings):],
		ElementsCount: size,
	}
	if proof.RootHash, err = m.CalculateRootHash(proof.Peaks); err != nil {
		return Proof{}, err
	}
	if m.log != nil {
		m.log.Debugf("proof: id=%s, i=%d, size=%d, path=%d", m.id, elementIndex, size, len(siblings))
	}
	return proof, nil
}

// GetProofs returns proofs for each index, in the order given. All proofs
// are produced against the same size and the store is read concurrently.
func (m *MMR) GetProofs(ctx context.Context, elementIndices []uint64, opts ...ProofOption) ([]Proof, error) {
	size, err := m.resolveSize(ctx, opts...)
	if err != nil {
		return nil, err
	}

	proofs := make([]Proof, len(elementIndices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(proofConcurrency)
	for i, elementIndex := range elementIndices {
		g.Go(func() error {
			p, err := m.getProof(gctx, elementIndex, size)
			if err != nil {
				return err
			}
			proofs[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return proofs, nil
}
