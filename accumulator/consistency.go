package accumulator

import (
	"context"
	"fmt"

	"github.com/forestrie/go-mmrkv/hashing"
	"github.com/forestrie/go-mmrkv/mmr"
)

// ConsistencyProof shows that the mmr of size ToElementsCount is an append
// only extension of the mmr of size FromElementsCount.
//
// It is made of an inclusion proof, in the later mmr, for each peak of the
// earlier one. As every node hash depends only on the nodes below it, and
// the tree shape depends only on the size, an old peak can only be included
// at its original position if everything it committed is unchanged.
type ConsistencyProof struct {
	FromElementsCount uint64   `cbor:"1,keyasint"`
	ToElementsCount   uint64   `cbor:"2,keyasint"`
	FromPeaks         []string `cbor:"3,keyasint"`
	// Paths[i] is the inclusion path of FromPeaks[i] in the later mmr
	Paths   [][]string `cbor:"4,keyasint"`
	ToPeaks []string   `cbor:"5,keyasint"`
}

// GetConsistencyProof proves the mmr at fromCount is a prefix of the mmr at
// toCount. Both must be valid sizes no greater than the current size.
func (m *MMR) GetConsistencyProof(ctx context.Context, fromCount, toCount uint64) (ConsistencyProof, error) {
	size, err := m.resolveSize(ctx, WithElementsCount(toCount))
	if err != nil {
		return ConsistencyProof{}, err
	}
	if fromCount == 0 || fromCount > size || mmr.FindPeaks(fromCount) == nil {
		return ConsistencyProof{}, fmt.Errorf("%w: from size %d", ErrInvalidCount, fromCount)
	}

	fromPeaks := mmr.FindPeaks(fromCount)
	toPeaks := mmr.FindPeaks(size)

	positions := append([]uint64{}, fromPeaks...)
	positions = append(positions, toPeaks...)
	pathLens := make([]int, len(fromPeaks))
	for i, p := range fromPeaks {
		path, err := mmr.NodeSiblings(p, size)
		if err != nil {
			return ConsistencyProof{}, err
		}
		pathLens[i] = len(path)
		positions = append(positions, path...)
	}

	hashes, err := m.nodeHashes(ctx, m.store, positions)
	if err != nil {
		return ConsistencyProof{}, err
	}

	proof := ConsistencyProof{
		FromElementsCount: fromCount,
		ToElementsCount:   size,
		FromPeaks:         hashes[:len(fromPeaks):len(fromPeaks)],
		ToPeaks:           hashes[len(fromPeaks) : len(fromPeaks)+len(toPeaks) : len(fromPeaks)+len(toPeaks)],
		Paths:             make([][]string, len(fromPeaks)),
	}
	rest := hashes[len(fromPeaks)+len(toPeaks):]
	for i, n := range pathLens {
		proof.Paths[i], rest = rest[:n:n], rest[n:]
	}
	return proof, nil
}

func (m *MMR) VerifyConsistency(proof ConsistencyProof, fromRoot, toRoot string) (bool, error) {
	return VerifyConsistency(m.hasher, proof, fromRoot, toRoot)
}

// VerifyConsistency returns true if the proof shows the mmr with root
// toRoot contains, unchanged, the mmr with root fromRoot. fromRoot should
// come from a previously trusted source, such as a signed checkpoint.
func VerifyConsistency(h hashing.Hasher, proof ConsistencyProof, fromRoot, toRoot string) (bool, error) {
	fromPositions := mmr.FindPeaks(proof.FromElementsCount)
	toPositions := mmr.FindPeaks(proof.ToElementsCount)
	if proof.FromElementsCount == 0 || fromPositions == nil || toPositions == nil ||
		proof.FromElementsCount > proof.ToElementsCount {
		return false, fmt.Errorf("%w: %w: %d -> %d",
			ErrVerifyFailed, ErrInvalidCount, proof.FromElementsCount, proof.ToElementsCount)
	}
	if len(proof.FromPeaks) != len(fromPositions) || len(proof.Paths) != len(fromPositions) {
		return false, fmt.Errorf("%w: a path for each of the %d earlier peaks is required", ErrVerifyFailed, len(fromPositions))
	}
	if len(proof.ToPeaks) != len(toPositions) {
		return false, fmt.Errorf("%w: %d later peaks given, expected %d", ErrVerifyFailed, len(proof.ToPeaks), len(toPositions))
	}

	root, err := calculateRootHash(h, proof.FromPeaks)
	if err != nil {
		return false, err
	}
	if root != fromRoot {
		return false, fmt.Errorf("%w: earlier peaks do not bag to the earlier root", ErrVerifyFailed)
	}
	if root, err = calculateRootHash(h, proof.ToPeaks); err != nil {
		return false, err
	}
	if root != toRoot {
		return false, fmt.Errorf("%w: later peaks do not bag to the later root", ErrVerifyFailed)
	}

	toPeakIndex := make(map[uint64]int, len(toPositions))
	for i, p := range toPositions {
		toPeakIndex[p] = i
	}
	for i, fromPeak := range proof.FromPeaks {
		pos, peak, err := IncludedPeak(h, fromPositions[i], fromPeak, proof.Paths[i])
		if err != nil {
			return false, err
		}
		j, ok := toPeakIndex[pos]
		if !ok {
			return false, fmt.Errorf("%w: path %d does not reach a later peak", ErrVerifyFailed, i)
		}
		if peak != proof.ToPeaks[j] {
			return false, fmt.Errorf("%w: earlier peak %d is not included in the later mmr", ErrVerifyFailed, i)
		}
	}
	return true, nil
}
