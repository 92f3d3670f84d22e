package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService(ttl time.Duration) *JWTService {
	return NewJWTService(&JWTConfig{
		SecretKey:           []byte("test-secret"),
		AccessTokenDuration: ttl,
		Issuer:              "LinkTrace-Backend",
	})
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := testJWTService(time.Minute)

	token, err := svc.GenerateToken("admin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "LinkTrace-Backend", claims.Issuer)
}

func TestJWT_Expired(t *testing.T) {
	svc := testJWTService(-time.Minute)

	token, err := svc.GenerateToken("admin@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := testJWTService(time.Minute).GenerateToken("admin@example.com")
	require.NoError(t, err)

	other := NewJWTService(&JWTConfig{
		SecretKey:           []byte("different-secret"),
		AccessTokenDuration: time.Minute,
	})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := testJWTService(time.Minute).ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromBearer("Bearer abc123"))
	assert.Equal(t, "abc123", ExtractTokenFromBearer("Bearer abc123 "))
	assert.Empty(t, ExtractTokenFromBearer("abc123"))
	assert.Empty(t, ExtractTokenFromBearer(""))
	assert.Empty(t, ExtractTokenFromBearer("Basic abc123"))
}

func TestPasswordService(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, svc.VerifyPassword(hash, "s3cret"))
	assert.False(t, svc.VerifyPassword(hash, "wrong"))
}
