package accumulator

import (
	"fmt"

	"github.com/forestrie/go-mmrkv/hashing"
	"github.com/forestrie/go-mmrkv/mmr"
)

// VerifyProof checks that value is the leaf proven by proof, using the mmr's
// hasher. The store is not consulted.
func (m *MMR) VerifyProof(proof Proof, value string) (bool, error) {
	return VerifyProof(m.hasher, proof, value)
}

// VerifyProof returns true if hashing value and climbing the proof's
// authentication path reproduces the peak committing the leaf, and the
// proof's peaks bag to its root. Any mismatch is reported as an error
// wrapping ErrVerifyFailed.
func VerifyProof(h hashing.Hasher, proof Proof, value string) (bool, error) {
	size := proof.ElementsCount
	peakPositions := mmr.FindPeaks(size)
	if peakPositions == nil {
		return false, fmt.Errorf("%w: %w: %d", ErrVerifyFailed, ErrInvalidCount, size)
	}
	if len(proof.Peaks) != len(peakPositions) {
		return false, fmt.Errorf(
			"%w: %d peaks given, size %d has %d", ErrVerifyFailed, len(proof.Peaks), size, len(peakPositions))
	}
	if proof.ElementIndex == 0 || proof.ElementIndex > size || !mmr.IsLeaf(proof.ElementIndex) {
		return false, fmt.Errorf("%w: %d is not a leaf of an mmr of size %d", ErrVerifyFailed, proof.ElementIndex, size)
	}

	leafHash, err := h.Hash(value)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}
	if leafHash != proof.ElementHash {
		return false, fmt.Errorf("%w: value does not hash to the proven element", ErrVerifyFailed)
	}

	peakIndex, _, err := mmr.GetPeakInfo(size, proof.ElementIndex)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	pos, peak, err := IncludedPeak(h, proof.ElementIndex, leafHash, proof.Siblings)
	if err != nil {
		return false, err
	}
	if pos != peakPositions[peakIndex] {
		return false, fmt.Errorf(
			"%w: path of length %d does not reach the peak at %d", ErrVerifyFailed, len(proof.Siblings), peakPositions[peakIndex])
	}
	if peak != proof.Peaks[peakIndex] {
		return false, fmt.Errorf("%w: proven peak not present in the accumulator", ErrVerifyFailed)
	}

	root, err := calculateRootHash(h, proof.Peaks)
	if err != nil {
		return false, err
	}
	if root != proof.RootHash {
		return false, fmt.Errorf("%w: peaks do not bag to the root", ErrVerifyFailed)
	}
	return true, nil
}

// IncludedPeak climbs from the node at pos, leaf or interior, through path
// and returns the position and hash of the node reached. When path is
// complete that node is the peak committing pos.
func IncludedPeak(h hashing.Hasher, pos uint64, nodeHash string, path []string) (uint64, string, error) {
	height := mmr.PosHeight(pos)
	var err error
	for _, sibling := range path {
		// If the next node is higher, we are at the right child
		if mmr.IsRightChild(pos, height) {
			nodeHash, err = h.Hash(sibling, nodeHash)
		} else {
			nodeHash, err = h.Hash(nodeHash, sibling)
		}
		if err != nil {
			return 0, "", fmt.Errorf("%w: %w", ErrBackendFailure, err)
		}
		pos = mmr.Parent(pos, height)
		height++
	}
	return pos, nodeHash, nil
}
