// Package metrics instruments a store.Store with prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/forestrie/go-mmrkv/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "mmrkv"
	subsystem = "store"
)

const (
	OpGet        = "get"
	OpGetMany    = "get_many"
	OpSet        = "set"
	OpSetMany    = "set_many"
	OpDelete     = "delete"
	OpDeleteMany = "delete_many"
	OpUpdate     = "update"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	Errors     *prometheus.CounterVec
	Keys       *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics registers the store metrics with reg. Use a fresh registry per
// instance, registering twice with the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Number of store operations",
		}, []string{"op"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Number of store operations that failed",
		}, []string{"op"}),
		Keys: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "keys_total",
			Help:      "Number of keys read, written or deleted",
		}, []string{"op"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
	}
}

func (m *Metrics) observe(op string, keys int, start time.Time, err error) {
	m.Operations.WithLabelValues(op).Inc()
	m.Keys.WithLabelValues(op).Add(float64(keys))
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.Errors.WithLabelValues(op).Inc()
	}
}

// Store records metrics for every call to the wrapped store. Operations run
// through Update are recorded individually as well as the transaction.
type Store struct {
	inner   store.Store
	metrics *Metrics
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.Transactor = (*Store)(nil)
)

func NewStore(inner store.Store, metrics *Metrics) *Store {
	return &Store{inner: inner, metrics: metrics}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := s.inner.Get(ctx, key)
	s.metrics.observe(OpGet, 1, start, err)
	return v, ok, err
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	start := time.Now()
	values, err := s.inner.GetMany(ctx, keys)
	s.metrics.observe(OpGetMany, len(keys), start, err)
	return values, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value)
	s.metrics.observe(OpSet, 1, start, err)
	return err
}

func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	start := time.Now()
	err := s.inner.SetMany(ctx, entries)
	s.metrics.observe(OpSetMany, len(entries), start, err)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, key)
	s.metrics.observe(OpDelete, 1, start, err)
	return err
}

func (s *Store) DeleteMany(ctx context.Context, keys []string) error {
	start := time.Now()
	err := s.inner.DeleteMany(ctx, keys)
	s.metrics.observe(OpDeleteMany, len(keys), start, err)
	return err
}

// Update forwards to the wrapped store's transactions, if it has them
func (s *Store) Update(ctx context.Context, fn func(tx store.Store) error) error {
	start := time.Now()
	err := store.Update(ctx, s.inner, func(tx store.Store) error {
		return fn(&Store{inner: tx, metrics: s.metrics})
	})
	s.metrics.observe(OpUpdate, 0, start, err)
	return err
}
