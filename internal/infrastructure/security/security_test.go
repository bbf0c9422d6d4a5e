package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestViewerTokenRoundTrip(t *testing.T) {
	token, err := GenerateViewerToken(42, testSecret)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)

	id, err := ViewerIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestValidateJWT_Rejects(t *testing.T) {
	token, err := GenerateViewerToken(42, testSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "another-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWT(token, "")
	assert.ErrorIs(t, err, ErrMissingSecret)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ValidateJWT(signed, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	neverExpires := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"})
	signed, err = neverExpires.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ValidateJWT(signed, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken, "tokens without exp are rejected")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateJWT(unsigned, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestViewerIDFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    int64
		wantErr bool
	}{
		{"numeric", jwt.MapClaims{"sub": float64(7)}, 7, false},
		{"string", jwt.MapClaims{"sub": "7"}, 7, false},
		{"missing", jwt.MapClaims{}, 0, true},
		{"zero", jwt.MapClaims{"sub": "0"}, 0, true},
		{"fractional", jwt.MapClaims{"sub": 1.5}, 0, true},
		{"garbage", jwt.MapClaims{"sub": "abc"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ViewerIDFromClaims(tt.claims)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerators(t *testing.T) {
	id := GenerateULID()
	_, err := ulid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, GenerateULID())

	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	_, err = GenerateSecureKey(1)
	assert.Error(t, err)
}
