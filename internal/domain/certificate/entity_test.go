package certificate

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)

	assert.Len(t, string(code), CodeLength)
	assert.True(t, code.IsValid())

	// No ambiguous characters in the alphabet.
	for _, r := range "01IO" {
		assert.NotContains(t, string(code), string(r))
	}

	other, err := GenerateCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestVerificationCode_IsValid(t *testing.T) {
	assert.False(t, VerificationCode("").IsValid())
	assert.False(t, VerificationCode(strings.Repeat("A", CodeLength-1)).IsValid())
	assert.False(t, VerificationCode(strings.Repeat("A", CodeLength+1)).IsValid())
	assert.False(t, VerificationCode(strings.Repeat("0", CodeLength)).IsValid())
	assert.True(t, VerificationCode(strings.Repeat("A", CodeLength)).IsValid())
}

func TestVerificationCode_Digest(t *testing.T) {
	code := VerificationCode(strings.Repeat("B", CodeLength))

	digest := code.Digest()
	assert.Len(t, digest, 64) // hex of 256 bits
	assert.Equal(t, digest, code.Digest())

	other := VerificationCode(strings.Repeat("C", CodeLength))
	assert.NotEqual(t, digest, other.Digest())
}

func TestParseVerificationCode(t *testing.T) {
	code := strings.Repeat("K", CodeLength)

	parsed, err := ParseVerificationCode("  " + strings.ToLower(code) + " ")
	require.NoError(t, err)
	assert.Equal(t, VerificationCode(code), parsed)

	_, err = ParseVerificationCode("too-short")
	assert.Error(t, err)
}

func newTestCertificate(t *testing.T) *Certificate {
	t.Helper()
	code, err := GenerateCode()
	require.NoError(t, err)

	cert, err := NewCertificate(NewCertificateParams{
		ID:           uuid.NewString(),
		EnrollmentID: uuid.NewString(),
		Code:         code,
		IssuedBy:     "Instructor",
		Sequence:     42,
	})
	require.NoError(t, err)
	return cert
}

func TestNewCertificate(t *testing.T) {
	cert := newTestCertificate(t)

	assert.Equal(t, StatusValid, cert.Status)
	assert.Equal(t, cert.Code.Digest(), cert.CodeDigest)
	assert.True(t, strings.HasPrefix(cert.Number, "CERT-42-"))
	assert.Equal(t, "Instructor", cert.IssuedBy)
	assert.False(t, cert.IsRevoked())
	assert.Nil(t, cert.RevokedAt)
}

func TestNewCertificate_DefaultIssuer(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)

	cert, err := NewCertificate(NewCertificateParams{
		ID:           uuid.NewString(),
		EnrollmentID: uuid.NewString(),
		Code:         code,
		IssuedBy:     "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultIssuer, cert.IssuedBy)
}

func TestNewCertificate_Validation(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)

	_, err = NewCertificate(NewCertificateParams{ID: "bad", EnrollmentID: "e", Code: code})
	assert.Error(t, err)

	_, err = NewCertificate(NewCertificateParams{ID: uuid.NewString(), EnrollmentID: "", Code: code})
	assert.Error(t, err)

	_, err = NewCertificate(NewCertificateParams{
		ID:           uuid.NewString(),
		EnrollmentID: uuid.NewString(),
		Code:         "malformed",
	})
	assert.Error(t, err)
}

func TestRevoke(t *testing.T) {
	cert := newTestCertificate(t)

	require.NoError(t, cert.Revoke("  issued by mistake "))
	assert.True(t, cert.IsRevoked())
	assert.Equal(t, "issued by mistake", cert.RevokedReason)
	require.NotNil(t, cert.RevokedAt)

	// The record survives revocation, only the status changes.
	assert.Equal(t, cert.Code.Digest(), cert.CodeDigest)

	assert.Error(t, cert.Revoke("again"))
}
