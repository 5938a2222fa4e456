package accumulator

import (
	"context"
	"fmt"

	"github.com/forestrie/go-mmrkv/mmr"
	"github.com/forestrie/go-mmrkv/store"
)

type AppendResult struct {
	LeavesCount   uint64
	ElementsCount uint64
	// ElementIndex is the position of the new leaf
	ElementIndex uint64
	RootHash     string
}

// Append adds value as a new leaf and back fills the interior nodes 'above
// and to the left' that the leaf completes.
//
// Every write for the append is staged and flushed with a single SetMany. If
// the store implements store.Transactor the reads and the flush run in one
// transaction, and a failure leaves the store untouched.
func (m *MMR) Append(ctx context.Context, value string) (AppendResult, error) {
	var result AppendResult
	err := store.Update(ctx, m.store, func(tx store.Store) error {
		var err error
		result, err = m.append(ctx, tx, value)
		return err
	})
	if err != nil {
		return AppendResult{}, err
	}
	if m.log != nil {
		m.log.Debugf("append: id=%s, i=%d, size=%d, leaves=%d, root=%s",
			m.id, result.ElementIndex, result.ElementsCount, result.LeavesCount, result.RootHash)
	}
	return result, nil
}

func (m *MMR) append(ctx context.Context, tx store.Store, value string) (AppendResult, error) {
	c, err := m.readCounts(ctx, tx)
	if err != nil {
		return AppendResult{}, err
	}

	leafHash, err := m.hasher.Hash(value)
	if err != nil {
		return AppendResult{}, fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}

	elementIndex := c.elements + 1
	noMerges := mmr.LeafCountToAppendNoMerges(c.leaves)

	// Each merge combines the node just added with the complete mountain to
	// its left. The node just added is always a right child here, so its left
	// sibling is SiblingOffset(height) behind it and the parent immediately
	// follows it.
	//
	//   3   <- adding leaf 2 completes the mountain, 3 = Hash(1, 2)
	//  / \
	// 1   2
	lefts := make([]uint64, 0, noMerges)
	pos := elementIndex
	for height := range noMerges {
		lefts = append(lefts, pos-mmr.SiblingOffset(height))
		pos++
	}
	leftHashes, err := m.nodeHashes(ctx, tx, lefts)
	if err != nil {
		return AppendResult{}, err
	}

	staged := map[uint64]string{elementIndex: leafHash}
	pos, nodeHash := elementIndex, leafHash
	for _, left := range leftHashes {
		if nodeHash, err = m.hasher.Hash(left, nodeHash); err != nil {
			return AppendResult{}, fmt.Errorf("%w: %w", ErrBackendFailure, err)
		}
		pos++
		staged[pos] = nodeHash
	}

	elementsCount := pos
	leavesCount := c.leaves + 1
	if want := mmr.LeafCountToElementsCount(leavesCount); want != elementsCount {
		return AppendResult{}, fmt.Errorf(
			"%w: append produced %d elements for %d leaves, expected %d", ErrInvalidCount, elementsCount, leavesCount, want)
	}

	rootHash, err := m.stagedRoot(ctx, tx, elementsCount, staged)
	if err != nil {
		return AppendResult{}, err
	}

	entries := m.hashes.Entries(staged)
	entries[m.elementsCount.Key()] = store.FormatCount(elementsCount)
	entries[m.leavesCount.Key()] = store.FormatCount(leavesCount)
	entries[m.rootHashKey] = rootHash
	if err := tx.SetMany(ctx, entries); err != nil {
		return AppendResult{}, fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}

	return AppendResult{
		LeavesCount:   leavesCount,
		ElementsCount: elementsCount,
		ElementIndex:  elementIndex,
		RootHash:      rootHash,
	}, nil
}

// stagedRoot computes the root for elementsCount, taking peak hashes from
// staged where present and from the store otherwise.
func (m *MMR) stagedRoot(ctx context.Context, tx store.Store, elementsCount uint64, staged map[uint64]string) (string, error) {
	peaks := mmr.FindPeaks(elementsCount)

	var stored []uint64
	for _, p := range peaks {
		if _, ok := staged[p]; !ok {
			stored = append(stored, p)
		}
	}
	storedHashes, err := m.nodeHashes(ctx, tx, stored)
	if err != nil {
		return "", err
	}

	peakHashes := make([]string, len(peaks))
	for i, p := range peaks {
		if h, ok := staged[p]; ok {
			peakHashes[i] = h
			continue
		}
		peakHashes[i], storedHashes = storedHashes[0], storedHashes[1:]
	}
	return m.CalculateRootHash(peakHashes)
}
