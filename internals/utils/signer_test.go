package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name string `json:"name"`
	N    int    `json:"n"`
	Exp  int64  `json:"exp"`
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestSigner() *Signer {
	return NewSigner([]byte("test-secret-0123456789abcdefghijkl"), fixedClock(testNow))
}

func TestSigner_RoundTrip(t *testing.T) {
	s := newTestSigner()
	in := testPayload{Name: "küçük ürün", N: 42, Exp: testNow.Add(time.Minute).Unix()}

	token, err := s.Sign(in)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 2)

	var out testPayload
	require.NoError(t, s.Verify(token, &out))
	require.Equal(t, in, out)
}

func TestSigner_TamperedSignatureRejected(t *testing.T) {
	s := newTestSigner()
	token, err := s.Sign(testPayload{Name: "a", Exp: testNow.Add(time.Hour).Unix()})
	require.NoError(t, err)

	dot := strings.IndexByte(token, '.')
	for i := dot + 1; i < len(token); i++ {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		require.ErrorIs(t, s.Verify(string(b), nil), ErrInvalidToken, "byte %d", i)
	}
}

func TestSigner_TamperedPayloadRejected(t *testing.T) {
	s := newTestSigner()
	token, err := s.Sign(testPayload{Name: "a", N: 1, Exp: testNow.Add(time.Hour).Unix()})
	require.NoError(t, err)

	forged, err := s.Sign(testPayload{Name: "a", N: 2, Exp: testNow.Add(time.Hour).Unix()})
	require.NoError(t, err)

	mixed := strings.Split(forged, ".")[0] + "." + strings.Split(token, ".")[1]
	require.ErrorIs(t, s.Verify(mixed, nil), ErrInvalidToken)
}

func TestSigner_ExpiryEnforced(t *testing.T) {
	s := newTestSigner()
	token, err := s.Sign(testPayload{Exp: testNow.Unix() - 1})
	require.NoError(t, err)
	require.ErrorIs(t, s.Verify(token, nil), ErrInvalidToken)

	token, err = s.Sign(testPayload{Exp: testNow.Unix()})
	require.NoError(t, err)
	require.ErrorIs(t, s.Verify(token, nil), ErrInvalidToken)

	token, err = s.Sign(testPayload{})
	require.NoError(t, err)
	require.ErrorIs(t, s.Verify(token, nil), ErrInvalidToken)
}

func TestSigner_MalformedRejected(t *testing.T) {
	s := newTestSigner()
	valid, err := s.Sign(testPayload{Exp: testNow.Add(time.Hour).Unix()})
	require.NoError(t, err)

	cases := []string{
		"",
		"onlyonepart",
		valid + ".extra",
		"." + strings.Split(valid, ".")[1],
		strings.Split(valid, ".")[0] + ".",
		"!!!.@@@",
	}
	for _, tc := range cases {
		require.ErrorIs(t, s.Verify(tc, nil), ErrInvalidToken, tc)
	}
}

func TestSigner_DifferentSecretRejected(t *testing.T) {
	token, err := newTestSigner().Sign(testPayload{Exp: testNow.Add(time.Hour).Unix()})
	require.NoError(t, err)

	other := NewSigner([]byte("another-secret-0123456789abcdefghij"), fixedClock(testNow))
	require.ErrorIs(t, other.Verify(token, nil), ErrInvalidToken)
}

func TestSigner_NonJSONPayloadRejected(t *testing.T) {
	s := newTestSigner()
	// correctly signed, but the payload is not JSON
	encoded := encoding.EncodeToString([]byte("not json"))
	sig, err := s.Sign(testPayload{Exp: testNow.Add(time.Hour).Unix()})
	require.NoError(t, err)
	require.ErrorIs(t, s.Verify(encoded+"."+strings.Split(sig, ".")[1], nil), ErrInvalidToken)
}

func TestGenerateNumericCode(t *testing.T) {
	for _, n := range []int{1, 5, 6, 12} {
		code, err := GenerateNumericCode(n)
		require.NoError(t, err)
		require.Len(t, code, n)
		require.Equal(t, code, DigitsOnly(code))
	}
	_, err := GenerateNumericCode(0)
	require.Error(t, err)
}

func TestDigitsOnly(t *testing.T) {
	require.Equal(t, "12345", DigitsOnly(" 12-3 4a5 "))
	require.Equal(t, "", DigitsOnly("abc"))
	require.Equal(t, "", DigitsOnly("١٢٣"))
}
