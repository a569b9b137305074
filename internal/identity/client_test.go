package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare-health/telecare-backend/internal/identity/domain"
)

func toolkitServer(t *testing.T, status int, body interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
}

func TestFirebaseClient_SignInWithPassword(t *testing.T) {
	t.Run("success publishes the credential", func(t *testing.T) {
		server := toolkitServer(t, http.StatusOK, map[string]string{
			"localId":     "u-pat",
			"email":       "pat@example.com",
			"displayName": "Pat",
			"idToken":     "tok-123",
		})
		defer server.Close()

		client := NewFirebaseClient(nil, "test-key", server.URL)

		var published *domain.Credential
		client.OnCredentialChange(func(cred *domain.Credential) {
			published = cred
		})

		cred, err := client.SignInWithPassword(context.Background(), "pat@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "u-pat", cred.SubjectID)
		assert.Equal(t, "tok-123", cred.IDToken)
		require.NotNil(t, cred.DisplayName)
		assert.Equal(t, "Pat", *cred.DisplayName)

		require.NotNil(t, published)
		assert.Equal(t, "u-pat", published.SubjectID)
	})

	t.Run("wrong password", func(t *testing.T) {
		server := toolkitServer(t, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]string{"message": "INVALID_LOGIN_CREDENTIALS"},
		})
		defer server.Close()

		client := NewFirebaseClient(nil, "test-key", server.URL)
		_, err := client.SignInWithPassword(context.Background(), "pat@example.com", "nope")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		server := toolkitServer(t, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]string{"message": "EMAIL_NOT_FOUND"},
		})
		defer server.Close()

		client := NewFirebaseClient(nil, "test-key", server.URL)
		_, err := client.SignInWithPassword(context.Background(), "ghost@example.com", "secret")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("provider outage", func(t *testing.T) {
		server := toolkitServer(t, http.StatusInternalServerError, map[string]string{})
		defer server.Close()

		client := NewFirebaseClient(nil, "test-key", server.URL)
		_, err := client.SignInWithPassword(context.Background(), "pat@example.com", "secret")
		assert.ErrorIs(t, err, domain.ErrProviderUnreachable)
	})
}

func TestFirebaseClient_OnCredentialChange(t *testing.T) {
	client := NewFirebaseClient(nil, "test-key", "http://unused.invalid")

	// A new subscriber immediately sees the current state, nil included.
	called := 0
	var last *domain.Credential
	unsubscribe := client.OnCredentialChange(func(cred *domain.Credential) {
		called++
		last = cred
	})
	assert.Equal(t, 1, called)
	assert.Nil(t, last)

	client.publish(&domain.Credential{SubjectID: "u1"})
	assert.Equal(t, 2, called)
	require.NotNil(t, last)
	assert.Equal(t, "u1", last.SubjectID)

	// After unsubscribing no further changes arrive.
	unsubscribe()
	client.publish(nil)
	assert.Equal(t, 2, called)
}

func TestFirebaseClient_SignOutPublishesNil(t *testing.T) {
	client := NewFirebaseClient(nil, "test-key", "http://unused.invalid")

	var last *domain.Credential
	client.OnCredentialChange(func(cred *domain.Credential) {
		last = cred
	})

	client.publish(&domain.Credential{SubjectID: "u1"})
	require.NotNil(t, last)

	// No admin client wired in: sign-out only clears local state.
	require.NoError(t, client.SignOut(context.Background()))
	assert.Nil(t, last)
}
