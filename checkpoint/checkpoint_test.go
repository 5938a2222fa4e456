package checkpoint

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strconv"
	"testing"

	"github.com/datatrails/go-datatrails-common/azkeys"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-mmrkv/accumulator"
	"github.com/forestrie/go-mmrkv/hashing"
	"github.com/forestrie/go-mmrkv/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerateECKey(t *testing.T, curve elliptic.Curve) ecdsa.PrivateKey {
	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return *privateKey
}

func newTestMMR(t *testing.T, leaves int) *accumulator.MMR {
	ctx := context.Background()
	m, err := accumulator.New(store.NewMemory(), hashing.NewSHA256())
	require.NoError(t, err)
	for i := range leaves {
		_, err := m.Append(ctx, strconv.Itoa(i))
		require.NoError(t, err)
	}
	return m
}

func signCurrent(t *testing.T, m *accumulator.MMR, coseSigner *azkeys.TestCoseSigner) ([]byte, State) {
	ctx := context.Background()
	codec, err := NewCodec()
	require.NoError(t, err)
	signer := NewSigner("synsation.org", codec)

	state, err := CurrentState(ctx, m)
	require.NoError(t, err)
	pubKey, err := coseSigner.PublicKey()
	require.NoError(t, err)

	msg, err := signer.Sign1(coseSigner, coseSigner.KeyIdentifier(), pubKey, "mmrkv-checkpoint", state, nil)
	require.NoError(t, err)
	return msg, state
}

func TestSign1(t *testing.T) {
	logger.New("TEST")
	ctx := context.Background()

	key := testGenerateECKey(t, elliptic.P256())
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	m := newTestMMR(t, 11)

	msg, state := signCurrent(t, m, coseSigner)
	codec, err := NewCodec()
	require.NoError(t, err)

	signed, unverified, err := Decode(codec, msg)
	require.NoError(t, err)
	assert.Equal(t, uint64(19), unverified.ElementsCount)
	assert.Empty(t, unverified.RootHash)
	assert.Equal(t, state.Timestamp, unverified.Timestamp)

	// verification must fail if we haven't put the root in
	err = Verify(codec, dtcose.NewCWTPublicKeyProvider(signed), signed, unverified, nil)
	assert.ErrorIs(t, err, ErrVerifyFailed)

	restored, err := RecoverRoot(ctx, m, unverified)
	require.NoError(t, err)
	assert.Equal(t, state.RootHash, restored.RootHash)
	err = Verify(codec, dtcose.NewCWTPublicKeyProvider(signed), signed, restored, nil)
	assert.NoError(t, err)
}

func TestVerifyAgainstGrowingAccumulator(t *testing.T) {
	ctx := context.Background()
	key := testGenerateECKey(t, elliptic.P256())
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	m := newTestMMR(t, 5)

	msg, state := signCurrent(t, m, coseSigner)
	codec, err := NewCodec()
	require.NoError(t, err)

	// the checkpoint stays verifiable as leaves are added
	for i := 5; i < 30; i++ {
		_, err := m.Append(ctx, strconv.Itoa(i))
		require.NoError(t, err)
	}
	verified, err := VerifyAgainst(ctx, m, codec, msg, nil)
	require.NoError(t, err)
	assert.Equal(t, state.RootHash, verified.RootHash)
	assert.Equal(t, state.ElementsCount, verified.ElementsCount)
}

func TestVerifyEmptyCheckpointAfterAppends(t *testing.T) {
	ctx := context.Background()
	key := testGenerateECKey(t, elliptic.P256())
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	m := newTestMMR(t, 0)

	msg, state := signCurrent(t, m, coseSigner)
	assert.Equal(t, uint64(0), state.ElementsCount)
	codec, err := NewCodec()
	require.NoError(t, err)

	for i := range 3 {
		_, err := m.Append(ctx, strconv.Itoa(i))
		require.NoError(t, err)
	}
	verified, err := VerifyAgainst(ctx, m, codec, msg, nil)
	require.NoError(t, err)
	assert.Equal(t, state.RootHash, verified.RootHash)
	assert.Equal(t, uint64(0), verified.ElementsCount)
}

func TestVerifyAgainstDifferentAccumulator(t *testing.T) {
	ctx := context.Background()
	key := testGenerateECKey(t, elliptic.P256())
	coseSigner := azkeys.NewTestCoseSigner(t, key)

	msg, _ := signCurrent(t, newTestMMR(t, 5), coseSigner)
	codec, err := NewCodec()
	require.NoError(t, err)

	// same size, different leaves
	other, err := accumulator.New(store.NewMemory(), hashing.NewSHA256())
	require.NoError(t, err)
	for i := range 5 {
		_, err := other.Append(ctx, "other"+strconv.Itoa(i))
		require.NoError(t, err)
	}
	_, err = VerifyAgainst(ctx, other, codec, msg, nil)
	assert.ErrorIs(t, err, ErrStateRootMismatch)

	// too small to reproduce the signed size
	_, err = VerifyAgainst(ctx, newTestMMR(t, 2), codec, msg, nil)
	assert.ErrorIs(t, err, accumulator.ErrInvalidCount)

	keccak, err := accumulator.New(store.NewMemory(), hashing.NewKeccak256())
	require.NoError(t, err)
	_, err = VerifyAgainst(ctx, keccak, codec, msg, nil)
	assert.ErrorIs(t, err, ErrHasherMismatch)
}
