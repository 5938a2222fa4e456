// Package accumulator implements a Merkle Mountain Range accumulator whose
// state lives entirely in a store.Store.
//
// An MMR value holds only its store, hasher and key namespace. Every count
// and node hash is read from the store when needed, so several MMR values
// may be opened over the same namespace. Appends are serialised by the store
// when it implements store.Transactor, and are otherwise the caller's
// responsibility.
//
// Node hashes are computed as
//
//	leaf   = Hash(value)
//	parent = Hash(left, right)
//	root   = Hash(peak0, peak1, ..., peakN)
//
// with the peaks listed left to right, highest first.
package accumulator

import (
	"context"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-mmrkv/hashing"
	"github.com/forestrie/go-mmrkv/mmr"
	"github.com/forestrie/go-mmrkv/store"
	"github.com/google/uuid"
)

const (
	elementsCountKey = "elements_count"
	leavesCountKey   = "leaves_count"
	rootHashKey      = "root_hash"
	hashesPrefix     = "hashes:"
)

type MMR struct {
	store  store.Store
	hasher hashing.Hasher
	id     string
	log    logger.Logger

	elementsCount *store.Counter
	leavesCount   *store.Counter
	rootHashKey   string
	hashes        *store.Table
}

func New(s store.Store, h hashing.Hasher, opts ...Option) (*MMR, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if h == nil {
		return nil, ErrNilHasher
	}
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	m := &MMR{
		store:         s,
		hasher:        h,
		id:            o.ID,
		log:           o.Log,
		elementsCount: store.NewCounter(s, key(o.ID, elementsCountKey)),
		leavesCount:   store.NewCounter(s, key(o.ID, leavesCountKey)),
		rootHashKey:   key(o.ID, rootHashKey),
		hashes:        store.NewTable(s, key(o.ID, hashesPrefix)),
	}
	return m, nil
}

func key(id, name string) string {
	return id + ":" + name
}

func (m *MMR) ID() string { return m.id }

func (m *MMR) Hasher() hashing.Hasher { return m.hasher }

// HashKey returns the store key of the node hash at elementIndex
func (m *MMR) HashKey(elementIndex uint64) string {
	return m.hashes.Key(elementIndex)
}

func (m *MMR) ElementsCount(ctx context.Context) (uint64, error) {
	c, err := m.readCounts(ctx, m.store)
	return c.elements, err
}

func (m *MMR) LeavesCount(ctx context.Context) (uint64, error) {
	c, err := m.readCounts(ctx, m.store)
	return c.leaves, err
}

// RootHash returns the stored root. The root of an empty mmr is Hash() of
// no values.
func (m *MMR) RootHash(ctx context.Context) (string, error) {
	values, err := m.store.GetMany(ctx, []string{m.elementsCount.Key(), m.rootHashKey})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}
	root, ok := values[m.rootHashKey]
	if ok {
		return root, nil
	}
	if _, ok := values[m.elementsCount.Key()]; ok {
		return "", fmt.Errorf("%w: %s", ErrMissingNode, m.rootHashKey)
	}
	return m.CalculateRootHash(nil)
}

// CalculateRootHash bags the peaks, given left to right, into the root
func (m *MMR) CalculateRootHash(peaks []string) (string, error) {
	return calculateRootHash(m.hasher, peaks)
}

func calculateRootHash(h hashing.Hasher, peaks []string) (string, error) {
	root, err := h.Hash(peaks...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}
	return root, nil
}

// GetPeaks returns the peak hashes, left to right
func (m *MMR) GetPeaks(ctx context.Context, opts ...ProofOption) ([]string, error) {
	size, err := m.resolveSize(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return m.nodeHashes(ctx, m.store, mmr.FindPeaks(size))
}

type counts struct {
	elements uint64
	leaves   uint64
}

// readCounts reads both counters in one request. The elements count is
// authoritative, the leaf count must agree with it.
func (m *MMR) readCounts(ctx context.Context, r store.Reader) (counts, error) {
	ecKey, lcKey := m.elementsCount.Key(), m.leavesCount.Key()
	values, err := r.GetMany(ctx, []string{ecKey, lcKey})
	if err != nil {
		return counts{}, fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}

	var c counts
	if v, ok := values[ecKey]; ok {
		if c.elements, err = store.ParseCount(ecKey, v); err != nil {
			return counts{}, fmt.Errorf("%w: %w", ErrInvalidCount, err)
		}
	}
	if v, ok := values[lcKey]; ok {
		if c.leaves, err = store.ParseCount(lcKey, v); err != nil {
			return counts{}, fmt.Errorf("%w: %w", ErrInvalidCount, err)
		}
	}

	leaves, err := mmr.ElementsCountToLeafCount(c.elements)
	if err != nil {
		return counts{}, err
	}
	if leaves != c.leaves {
		return counts{}, fmt.Errorf(
			"%w: %d elements implies %d leaves, store has %d", ErrInvalidCount, c.elements, leaves, c.leaves)
	}
	return c, nil
}

// resolveSize returns the mmr size proofs should be produced against. That
// is the current size unless WithElementsCount selects an earlier one,
// including 0 for the empty mmr.
func (m *MMR) resolveSize(ctx context.Context, opts ...ProofOption) (uint64, error) {
	o := proofOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	c, err := m.readCounts(ctx, m.store)
	if err != nil {
		return 0, err
	}
	if !o.set {
		return c.elements, nil
	}
	if o.elementsCount == 0 {
		return 0, nil
	}
	if o.elementsCount > c.elements {
		return 0, fmt.Errorf("%w: %d exceeds the current size %d", ErrInvalidCount, o.elementsCount, c.elements)
	}
	if mmr.FindPeaks(o.elementsCount) == nil {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, o.elementsCount)
	}
	return o.elementsCount, nil
}

// nodeHashes fetches the hashes at the given positions in order, failing if
// any is absent
func (m *MMR) nodeHashes(ctx context.Context, s store.Store, positions []uint64) ([]string, error) {
	if len(positions) == 0 {
		return []string{}, nil
	}
	found, err := m.hashes.WithStore(s).GetMany(ctx, positions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}
	hashes := make([]string, len(positions))
	for i, pos := range positions {
		h, ok := found[pos]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingNode, m.hashes.Key(pos))
		}
		hashes[i] = h
	}
	return hashes, nil
}
