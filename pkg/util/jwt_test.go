package util

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func staffTokens(t *testing.T, role string, access, refresh time.Duration) *TokenPair {
	t.Helper()
	tokens, err := GenerateTokenPair(7, "clerk@statelink.com", role, testSecret, access, refresh)
	require.NoError(t, err)
	return tokens
}

func TestGenerateTokenPair_RoleClaims(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		email  string
		role   string
	}{
		{name: "Admin account", userID: 1, email: "admin@statelink.com", role: "admin"},
		{name: "Staff account", userID: 2, email: "clerk@statelink.com", role: "staff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := GenerateTokenPair(tt.userID, tt.email, tt.role, testSecret, 15*time.Minute, 7*24*time.Hour)
			require.NoError(t, err)
			assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

			access, err := ValidateToken(tokens.AccessToken, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, access.UserID)
			assert.Equal(t, tt.email, access.Email)
			assert.Equal(t, tt.role, access.Role)
			assert.Equal(t, TokenTypeAccess, access.Subject)
			assert.WithinDuration(t, access.IssuedAt.Add(15*time.Minute), access.ExpiresAt.Time, time.Second)

			refresh, err := ValidateToken(tokens.RefreshToken, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.role, refresh.Role)
			assert.Equal(t, TokenTypeRefresh, refresh.Subject)
			assert.WithinDuration(t, refresh.IssuedAt.Add(7*24*time.Hour), refresh.ExpiresAt.Time, time.Second)
		})
	}
}

// elevate rewrites the role claim without re-signing.
func elevate(t *testing.T, token, from, to string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	edited := strings.Replace(string(payload), `"role":"`+from+`"`, `"role":"`+to+`"`, 1)
	require.NotEqual(t, string(payload), edited)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(edited))
	return strings.Join(parts, ".")
}

func TestValidateAccessToken(t *testing.T) {
	staff := staffTokens(t, "staff", 15*time.Minute, time.Hour)
	expired := staffTokens(t, "staff", -time.Minute, time.Hour)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 7,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   TokenTypeAccess,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		secret   string
		wantErr  error
		wantRole string
	}{
		{name: "Staff access token", token: staff.AccessToken, secret: testSecret, wantRole: "staff"},
		{name: "Staff token edited to claim admin", token: elevate(t, staff.AccessToken, "staff", "admin"), secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Unsigned admin token", token: unsigned, secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Signed by another deployment", token: staff.AccessToken, secret: "other-secret", wantErr: ErrInvalidToken},
		{name: "Refresh token on an admin route", token: staff.RefreshToken, secret: testSecret, wantErr: ErrWrongTokenType},
		{name: "Expired staff token", token: expired.AccessToken, secret: testSecret, wantErr: ErrExpiredToken},
		{name: "Empty bearer", token: "", secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateAccessToken(tt.token, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, claims.Role)
		})
	}
}

func TestClaims_RevocationTTL(t *testing.T) {
	tokens := staffTokens(t, "staff", 15*time.Minute, 7*24*time.Hour)
	access, err := ValidateToken(tokens.AccessToken, testSecret)
	require.NoError(t, err)
	refresh, err := ValidateToken(tokens.RefreshToken, testSecret)
	require.NoError(t, err)

	now := access.IssuedAt.Time

	tests := []struct {
		name   string
		claims *Claims
		at     time.Time
		want   time.Duration
	}{
		{name: "Logout right after login", claims: access, at: now, want: 15 * time.Minute},
		{name: "Logout late in the session", claims: access, at: now.Add(10 * time.Minute), want: 5 * time.Minute},
		{name: "Already expired", claims: access, at: now.Add(time.Hour), want: 0},
		{name: "Refresh token lives longer", claims: refresh, at: refresh.IssuedAt.Time, want: 7 * 24 * time.Hour},
		{name: "No expiry claim", claims: &Claims{Role: "staff"}, at: now, want: 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.RevocationTTL(tt.at, 30*time.Minute))
		})
	}
}
