package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/telecare-health/telecare-backend/internal/identity/domain"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleSignIn exchanges an OAuth authorization code for a Google profile
// and publishes the resulting credential. Used by the SPA's "Sign in with
// Google" flow; role defaulting for first-time Google subjects happens in
// the session store.
type GoogleSignIn struct {
	client      *FirebaseClient
	oauthConfig *oauth2.Config
	userinfoURL string
}

func NewGoogleSignIn(client *FirebaseClient, clientID, clientSecret, redirectURL string) *GoogleSignIn {
	return &GoogleSignIn{
		client: client,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

// AuthURL returns the provider consent URL for the given state.
func (g *GoogleSignIn) AuthURL(state string) string {
	return g.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Exchange trades the authorization code for a credential.
func (g *GoogleSignIn) Exchange(ctx context.Context, code string) (*domain.Credential, error) {
	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}

	httpClient := g.oauthConfig.Client(ctx, token)
	resp, err := httpClient.Get(g.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", domain.ErrProviderUnreachable, resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	cred := &domain.Credential{
		SubjectID: "google:" + profile.ID,
		Email:     profile.Email,
	}
	if profile.Name != "" {
		cred.DisplayName = &profile.Name
	}
	if profile.Picture != "" {
		cred.AvatarURL = &profile.Picture
	}

	g.client.publish(cred)
	return cred, nil
}
