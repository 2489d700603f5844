package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokens() services.TokenService {
	return services.NewTokenService("mw-secret", time.Hour, clockwork.NewRealClock())
}

func protected(tokens services.TokenService, roles ...models.UserRole) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := GetUserIDFromContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	var h http.Handler = final
	if len(roles) > 0 {
		h = RequireRole(roles...)(h)
	}
	return Authenticate(tokens, logger)(h)
}

func doRequest(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokens()
	token, err := tokens.Issue(&models.User{ID: 5, Role: models.RoleUser, DisplayName: "Alice"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(protected(tokens), token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(protected(tokens), "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(protected(tokens), "garbage").Code)

	foreign, err := services.NewTokenService("other", time.Hour, clockwork.NewRealClock()).Issue(&models.User{ID: 5, Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doRequest(protected(tokens), foreign).Code)
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens()
	userToken, err := tokens.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)
	adminToken, err := tokens.Issue(&models.User{ID: 2, Role: models.RoleAdmin})
	require.NoError(t, err)

	h := protected(tokens, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, doRequest(h, userToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(h, adminToken).Code)
}
