package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNewRejectsTableName(t *testing.T) {
	for _, name := range []string{"", "1abc", "mmr; DROP TABLE x", "a-b"} {
		_, err := New(context.Background(), nil, WithTable(name))
		assert.ErrorIs(t, err, ErrInvalidTableName, name)
	}
}

func TestQueriesUseTable(t *testing.T) {
	q := newQueries("hashes")
	assert.Equal(t, `SELECT value FROM hashes WHERE key = $1`, q.get)
	assert.Contains(t, q.upsert, "ON CONFLICT (key) DO UPDATE")
	assert.Contains(t, q.create, "CREATE TABLE IF NOT EXISTS hashes")
}

func TestIsSerializationFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization", &pq.Error{Code: "40001"}, true},
		{"deadlock", &pq.Error{Code: "40P01"}, true},
		{"wrapped", fmt.Errorf("append: %w", &pq.Error{Code: "40001"}), true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"other", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSerializationFailure(tt.err))
		})
	}
}
