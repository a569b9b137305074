package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/telecare-health/telecare-backend/internal/identity/domain"
)

// ChangeHandler receives the new current credential, or nil on sign-out.
type ChangeHandler func(*domain.Credential)

// Client is the identity-provider boundary consumed by the session store.
// Implementations publish credential changes after every successful
// sign-in, sign-up and sign-out.
type Client interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Credential, error)
	SignUp(ctx context.Context, email, password, displayName string) (*domain.Credential, error)
	SignOut(ctx context.Context) error
	OnCredentialChange(handler func(*domain.Credential)) (unsubscribe func())
}

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseClient wraps the Firebase Admin SDK plus the Identity Toolkit
// REST API (the Admin SDK has no password grant). It tracks the single
// live credential and fans out change notifications.
type FirebaseClient struct {
	authClient *fbauth.Client
	apiKey     string
	baseURL    string
	httpClient *http.Client

	mu       sync.Mutex
	current  *domain.Credential
	handlers map[int]ChangeHandler
	nextID   int
}

// NewFirebaseClient creates a FirebaseClient. baseURL overrides the
// Identity Toolkit endpoint (used in tests); pass "" for the default.
func NewFirebaseClient(authClient *fbauth.Client, apiKey, baseURL string) *FirebaseClient {
	if baseURL == "" {
		baseURL = identityToolkitURL
	}
	return &FirebaseClient{
		authClient: authClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		handlers:   make(map[int]ChangeHandler),
	}
}

// OnCredentialChange registers a handler and immediately replays the
// current credential state to it, mirroring provider SDK behaviour.
func (c *FirebaseClient) OnCredentialChange(handler func(*domain.Credential)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = handler
	current := c.current
	c.mu.Unlock()

	handler(current)

	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}
}

func (c *FirebaseClient) publish(cred *domain.Credential) {
	c.mu.Lock()
	c.current = cred
	handlers := make([]ChangeHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(cred)
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	ProfilePhoto string `json:"profilePicture"`
	IDToken      string `json:"idToken"`
}

type toolkitError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword authenticates against the Identity Toolkit REST API.
func (c *FirebaseClient) SignInWithPassword(ctx context.Context, email, password string) (*domain.Credential, error) {
	resp, err := c.post(ctx, "accounts:signInWithPassword", signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	cred := credentialFromSignIn(resp)
	c.publish(cred)
	return cred, nil
}

// SignUp creates the user through the Admin SDK, then signs it in so the
// caller holds a live credential with an ID token.
func (c *FirebaseClient) SignUp(ctx context.Context, email, password, displayName string) (*domain.Credential, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	if _, err := c.authClient.CreateUser(ctx, params); err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, domain.ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}

	resp, err := c.post(ctx, "accounts:signInWithPassword", signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}
	if resp.DisplayName == "" {
		resp.DisplayName = displayName
	}

	cred := credentialFromSignIn(resp)
	c.publish(cred)
	return cred, nil
}

// SignOut clears the live credential and revokes its refresh tokens.
func (c *FirebaseClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current != nil && c.authClient != nil {
		if err := c.authClient.RevokeRefreshTokens(ctx, current.SubjectID); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
		}
	}

	c.publish(nil)
	return nil
}

// AuthClient exposes the underlying Admin SDK client for middleware wiring.
func (c *FirebaseClient) AuthClient() *fbauth.Client {
	return c.authClient
}

// VerifyIDToken validates a Firebase ID token (used by the HTTP middleware).
func (c *FirebaseClient) VerifyIDToken(ctx context.Context, token string) (*fbauth.Token, error) {
	return c.authClient.VerifyIDToken(ctx, token)
}

func (c *FirebaseClient) post(ctx context.Context, action string, body signInRequest) (*signInResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s?key=%s", c.baseURL, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnreachable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var terr toolkitError
		_ = json.Unmarshal(data, &terr)
		if isCredentialError(terr.Error.Message) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnreachable, terr.Error.Message)
	}

	var out signInResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func isCredentialError(message string) bool {
	switch {
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(message, "USER_DISABLED"):
		return true
	}
	return false
}

func credentialFromSignIn(resp *signInResponse) *domain.Credential {
	cred := &domain.Credential{
		SubjectID: resp.LocalID,
		Email:     resp.Email,
		IDToken:   resp.IDToken,
	}
	if resp.DisplayName != "" {
		cred.DisplayName = &resp.DisplayName
	}
	if resp.ProfilePhoto != "" {
		cred.AvatarURL = &resp.ProfilePhoto
	}
	return cred
}
