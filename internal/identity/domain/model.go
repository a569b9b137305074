package domain

// Credential is an authenticated identity handed back by the provider
// after a successful sign-in. SubjectID is stable for the credential's lifetime.
type Credential struct {
	SubjectID   string  `json:"subject_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	IDToken     string  `json:"-"`
}
