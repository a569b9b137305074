package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	token   *auth.Token
	err     error
	lastCtx context.Context
}

func (f *fakeVerifier) VerifyIDToken(ctx context.Context, _ string) (*auth.Token, error) {
	f.lastCtx = ctx
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

type ctxMarker struct{}

func TestTokenAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(verifier TokenVerifier) *gin.Engine {
		r := gin.New()
		r.Use(TokenAuthMiddleware(verifier))
		r.GET("/me", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("valid token populates the request context", func(t *testing.T) {
		verifier := &fakeVerifier{token: &auth.Token{
			UID: "bob-uid",
			Claims: map[string]interface{}{
				"email": "bob@example.com",
				"name":  "Bob Ferris",
			},
		}}

		var keys map[string]any
		r := gin.New()
		r.Use(TokenAuthMiddleware(verifier))
		r.GET("/me", func(c *gin.Context) {
			keys = map[string]any{
				"subject_id":   c.GetString("subject_id"),
				"raw_token":    c.GetString("raw_token"),
				"email":        c.GetString("email"),
				"display_name": c.GetString("display_name"),
			}
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer tok-bob")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bob-uid", keys["subject_id"])
		assert.Equal(t, "tok-bob", keys["raw_token"])
		assert.Equal(t, "bob@example.com", keys["email"])
		assert.Equal(t, "Bob Ferris", keys["display_name"])
	})

	t.Run("verification runs under the request context", func(t *testing.T) {
		verifier := &fakeVerifier{token: &auth.Token{UID: "bob-uid"}}
		r := newRouter(verifier)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), ctxMarker{}, "present"))
		req.Header.Set("Authorization", "Bearer tok-bob")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, verifier.lastCtx)
		assert.Equal(t, "present", verifier.lastCtx.Value(ctxMarker{}))
	})

	t.Run("missing bearer token is rejected", func(t *testing.T) {
		verifier := &fakeVerifier{token: &auth.Token{UID: "bob-uid"}}
		r := newRouter(verifier)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, verifier.lastCtx)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		verifier := &fakeVerifier{err: errors.New("token expired")}
		r := newRouter(verifier)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer stale")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
