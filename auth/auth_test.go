package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"game-lab/domain"
	"game-lab/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := domain.User{ID: "u-1", Name: "brave-teal-otter"}

	token, err := issuer.GenerateToken(user)
	req.NoError(err)

	got, err := issuer.ValidateToken(token)
	req.NoError(err)
	req.Equal(user, got)
}

func TestToken_Rejections(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	valid, err := issuer.GenerateToken(domain.User{ID: "u-1"})
	require.NoError(t, err)

	expired := NewTokenIssuer("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.GenerateToken(domain.User{ID: "u-1"})
	require.NoError(t, err)

	anonymous, err := issuer.GenerateToken(domain.User{})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{UserID: "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", mustSign(t, NewTokenIssuer("other", time.Hour))},
		{"expired", stale},
		{"garbage", "not.a.token"},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"missing user id", anonymous},
		{"none algorithm", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.ValidateToken(tt.token)
			require.ErrorIs(t, err, errors.ErrInvalidToken)
		})
	}
}

func mustSign(t *testing.T, issuer *TokenIssuer) string {
	t.Helper()
	token, err := issuer.GenerateToken(domain.User{ID: "u-1"})
	require.NoError(t, err)
	return token
}

func TestRandomName(t *testing.T) {
	req := require.New(t)
	for i := 0; i < 50; i++ {
		parts := strings.Split(RandomName(), "-")
		req.Len(parts, 3)
		req.Contains(adjectives, parts[0])
		req.Contains(colors, parts[1])
		req.Contains(animals, parts[2])
	}
	a, b := NewAnonymousUser(), NewAnonymousUser()
	req.NotEqual(a.ID, b.ID)
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.GenerateToken(domain.User{ID: "u-1", Name: "A"})
	require.NoError(t, err)

	handler := Middleware(issuer.ValidateToken, func(w http.ResponseWriter, err error) {
		http.Error(w, err.Error(), errors.HTTPStatus(err))
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(user.ID))
	}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "u-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			r := httptest.NewRequest(http.MethodPost, "/rooms", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			req.Equal(tt.status, w.Code)
			if tt.body != "" {
				req.Equal(tt.body, w.Body.String())
			}
		})
	}
}
