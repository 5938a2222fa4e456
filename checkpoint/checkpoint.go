// Package checkpoint signs and verifies commitments to accumulator states.
//
// A checkpoint is a COSE Sign1 message whose payload is the CBOR encoded
// State. The root is removed from the payload after signing, so a verifier
// must recover it from the accumulator at the signed size before the
// signature will verify.
package checkpoint

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/forestrie/go-mmrkv/accumulator"
	"github.com/veraison/go-cose"
)

var (
	ErrStateRootMismatch = errors.New("the root recovered from the accumulator does not match the state")
	ErrStateRootPresent  = errors.New("a signed state must have its root detached")
	ErrHasherMismatch    = errors.New("the state was signed for a different hash function")
	ErrVerifyFailed      = errors.New("checkpoint signature verification failed")
)

// State is the signed commitment to an accumulator.
type State struct {
	// Any later accumulator state can reproduce the root at ElementsCount, so
	// a checkpoint stays verifiable as the accumulator grows.
	ElementsCount uint64 `cbor:"1,keyasint"`
	RootHash      string `cbor:"2,keyasint"`
	// Timestamp is the unix time (milliseconds) read at the time the root was
	// signed. Including it allows for the same root to be re-signed.
	Timestamp int64 `cbor:"3,keyasint"`
	// Hasher names the hash function, so the root can only be recovered with
	// the one it was produced by.
	Hasher string `cbor:"4,keyasint"`
}

type publicKeyProvider interface {
	PublicKey() (crypto.PublicKey, cose.Algorithm, error)
}

// Signer produces signatures over accumulator states. A state should only be
// signed after checking it is consistent with the last signed state, see
// accumulator.VerifyConsistency.
type Signer struct {
	issuer    string
	cborCodec dtcbor.CBORCodec
}

func NewSigner(issuer string, cborCodec dtcbor.CBORCodec) Signer {
	return Signer{
		issuer:    issuer,
		cborCodec: cborCodec,
	}
}

func NewCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(), // unsigned int decodes to uint64
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

// CurrentState reads the state of m for signing
func CurrentState(ctx context.Context, m *accumulator.MMR) (State, error) {
	size, err := m.ElementsCount(ctx)
	if err != nil {
		return State{}, err
	}
	root, err := m.RootHash(ctx)
	if err != nil {
		return State{}, err
	}
	return State{
		ElementsCount: size,
		RootHash:      root,
		Timestamp:     time.Now().UnixMilli(),
		Hasher:        m.Hasher().Name(),
	}, nil
}

// Sign1 signs state and returns the encoded message with the root detached.
func (s Signer) Sign1(
	coseSigner cose.Signer, keyIdentifier string, publicKey *ecdsa.PublicKey,
	subject string, state State, external []byte,
) ([]byte, error) {
	payload, err := s.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	coseHeaders := cose.Headers{
		Protected: cose.ProtectedHeader{
			dtcose.HeaderLabelCWTClaims: dtcose.NewCNFClaim(
				s.issuer, subject, keyIdentifier, coseSigner.Algorithm(), *publicKey),
		},
	}

	msg := cose.Sign1Message{
		Headers: coseHeaders,
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, coseSigner); err != nil {
		return nil, err
	}

	state.RootHash = ""
	if msg.Payload, err = s.cborCodec.MarshalCBOR(state); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}

// Decode returns the message and its unverified state. The state's root is
// empty until restored with RecoverRoot.
func Decode(codec dtcbor.CBORCodec, msg []byte) (*dtcose.CoseSign1Message, State, error) {
	signed, err := dtcose.NewCoseSign1MessageFromCBOR(
		msg, dtcose.WithDecOptions(dtcbor.NewDeterministicDecOpts()))
	if err != nil {
		return nil, State{}, err
	}

	var unverified State
	if err = codec.UnmarshalInto(signed.Payload, &unverified); err != nil {
		return nil, State{}, err
	}
	if unverified.RootHash != "" {
		return nil, State{}, ErrStateRootPresent
	}
	return signed, unverified, nil
}

// RecoverRoot fills in the state's root from the peaks of m at the signed
// size.
func RecoverRoot(ctx context.Context, m *accumulator.MMR, state State) (State, error) {
	if state.Hasher != m.Hasher().Name() {
		return State{}, fmt.Errorf("%w: %s, accumulator uses %s", ErrHasherMismatch, state.Hasher, m.Hasher().Name())
	}
	peaks, err := m.GetPeaks(ctx, accumulator.WithElementsCount(state.ElementsCount))
	if err != nil {
		return State{}, err
	}
	if state.RootHash, err = m.CalculateRootHash(peaks); err != nil {
		return State{}, err
	}
	return state, nil
}

// Verify applies state, which must have its root restored, to the signed
// message and checks the signature.
func Verify(
	codec dtcbor.CBORCodec, keyProvider publicKeyProvider,
	signed *dtcose.CoseSign1Message, state State, external []byte,
) error {
	var err error
	if signed.Payload, err = codec.MarshalCBOR(state); err != nil {
		return err
	}
	if err = signed.VerifyWithProvider(keyProvider, external); err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	return nil
}

// VerifyAgainst decodes msg, recovers its root from m and verifies the
// signature using the key carried in the message's CWT claims. It returns
// the verified state.
//
// A signature that fails only after the root is restored means the
// accumulator no longer reproduces the signed root, and is reported as
// ErrStateRootMismatch.
func VerifyAgainst(ctx context.Context, m *accumulator.MMR, codec dtcbor.CBORCodec, msg []byte, external []byte) (State, error) {
	signed, unverified, err := Decode(codec, msg)
	if err != nil {
		return State{}, err
	}
	state, err := RecoverRoot(ctx, m, unverified)
	if err != nil {
		return State{}, err
	}
	if err = Verify(codec, dtcose.NewCWTPublicKeyProvider(signed), signed, state, external); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrStateRootMismatch, err)
	}
	return state, nil
}
