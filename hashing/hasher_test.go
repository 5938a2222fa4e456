package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bn254Modulus = "21888242871839275222246405745257275088548364400416034343698204186575808495617"

func TestDigestHasherKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		hasher Hasher
		values []string
		want   string
	}{
		{"sha256 empty", NewSHA256(), nil, "0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"sha256 empty string", NewSHA256(), []string{""}, "0xaf5570f5a1810b7af78caf4bc70a660f0df51e42baf91d4de5b2328de0e83dfc"},
		{"sha256 a b", NewSHA256(), []string{"a", "b"}, "0x3c9d591045bc8876f9d0399bbfb05c6a412096e906f73278f98406cd5dca86df"},
		{"sha256 words", NewSHA256(WithFieldElements()), []string{"1", "0x2"}, "0xd6ba9329f8932c12192b37849f772104d20048f76434a3290512d9d814e4116f"},
		{"sha256 word hex", NewSHA256(WithFieldElements()), []string{"0xff"}, "0x60f9ca40b771fc97dd45423e98463ab5d5e515ce9b4fdfac5d90be969a8ab030"},
		{"keccak empty", NewKeccak256(), nil, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"blake2b empty", NewBlake2b256(), nil, "0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.hasher.Hash(tt.values...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringEncodingIsUnambiguous(t *testing.T) {
	for _, h := range []Hasher{NewSHA256(), NewKeccak256(), NewBlake2b256(), NewMiMC()} {
		t.Run(h.Name(), func(t *testing.T) {
			a, err := h.Hash("ab", "c")
			require.NoError(t, err)
			b, err := h.Hash("a", "bc")
			require.NoError(t, err)
			assert.NotEqual(t, a, b)

			again, err := h.Hash("ab", "c")
			require.NoError(t, err)
			assert.Equal(t, a, again)
		})
	}
}

func TestFieldEncodingRejectsInvalid(t *testing.T) {
	for _, h := range []Hasher{
		NewSHA256(WithFieldElements()),
		NewKeccak256(WithFieldElements()),
		NewMiMC(WithFieldElements()),
	} {
		t.Run(h.Name(), func(t *testing.T) {
			_, err := h.Hash("1", "not a number")
			assert.ErrorIs(t, err, ErrInvalidFieldElement)
			assert.Equal(t, EncodingFieldElement, h.Encoding())
		})
	}
}

func TestMiMCModulusBound(t *testing.T) {
	h := NewMiMC(WithFieldElements())

	_, err := h.Hash(bn254Modulus)
	assert.ErrorIs(t, err, ErrInvalidFieldElement)

	// modulus - 1 is the largest canonical element
	got, err := h.Hash("21888242871839275222246405745257275088548364400416034343698204186575808495616")
	require.NoError(t, err)
	assert.Len(t, got, 66)
}

func TestHashOutputsChainAsFieldElements(t *testing.T) {
	for _, h := range []Hasher{NewSHA256(WithFieldElements()), NewMiMC(WithFieldElements())} {
		t.Run(h.Name(), func(t *testing.T) {
			a, err := h.Hash("1")
			require.NoError(t, err)
			b, err := h.Hash("2")
			require.NoError(t, err)
			_, err = h.Hash(a, b)
			assert.NoError(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"sha256", "SHA256", "keccak256", "keccak", "blake2b256", "mimc", "mimc-bn254"} {
		h, err := New(name)
		require.NoError(t, err, name)
		assert.Equal(t, EncodingString, h.Encoding())
	}
	h, err := New("keccak", WithFieldElements())
	require.NoError(t, err)
	assert.Equal(t, EncodingFieldElement, h.Encoding())

	_, err = New("md5")
	assert.ErrorIs(t, err, ErrUnknownHasher)
}

func TestEncodingString(t *testing.T) {
	assert.Equal(t, "string", EncodingString.String())
	assert.Equal(t, "field-element", EncodingFieldElement.String())
	assert.Equal(t, "Encoding(7)", Encoding(7).String())
}
