package session

import (
	"context"
	"log"
	"sync"

	identitydomain "github.com/telecare-health/telecare-backend/internal/identity/domain"
	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// IdentityClient is the slice of the identity boundary the store consumes.
type IdentityClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identitydomain.Credential, error)
	SignUp(ctx context.Context, email, password, displayName string) (*identitydomain.Credential, error)
	SignOut(ctx context.Context) error
	OnCredentialChange(handler func(*identitydomain.Credential)) (unsubscribe func())
}

// RoleResolver resolves and assigns durable roles.
type RoleResolver interface {
	Resolve(ctx context.Context, subjectID string) (rolesdomain.Role, error)
	Assign(ctx context.Context, subjectID string, role rolesdomain.Role) error
}

// Subscriber receives every session state change in publish order.
type Subscriber func(State, *UserSession)

// Store owns the session lifecycle: it composes the identity provider's
// credential with the resolved role into a single UserSession and
// publishes it. At most one session is live at a time, and a session
// never exists without a live credential.
type Store struct {
	identity IdentityClient
	resolver RoleResolver

	mu          sync.Mutex
	state       State
	session     *UserSession
	subscribers map[int]Subscriber
	nextSub     int
	unsubscribe func()

	// pendingRole carries the role chosen at sign-up so the first
	// authenticated publish already includes it.
	pendingRole *rolesdomain.Role
	// defaultRole is assigned when resolution finds nothing, used by the
	// Google flow where first-time subjects become patients.
	defaultRole *rolesdomain.Role
	pendingErr  error
}

func NewStore(identity IdentityClient, resolver RoleResolver) *Store {
	return &Store{
		identity:    identity,
		resolver:    resolver,
		state:       StateLoading,
		subscribers: make(map[int]Subscriber),
	}
}

// Start subscribes to the identity provider's credential changes. The
// provider replays the current state immediately, moving the store out
// of StateLoading.
func (s *Store) Start(ctx context.Context) {
	s.unsubscribe = s.identity.OnCredentialChange(func(cred *identitydomain.Credential) {
		s.handleCredential(ctx, cred)
	})
}

// Stop detaches from the identity provider.
func (s *Store) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns the live session, or nil outside StateAuthenticated.
func (s *Store) Session() *UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// Subscribe registers fn for state changes and replays the current state.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	state, sess := s.state, s.session
	s.mu.Unlock()

	fn(state, sess)

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// SignIn authenticates with the identity provider. Provider failures are
// returned to the caller and leave the store's state untouched; the
// authenticated publish happens through the credential-change handler.
func (s *Store) SignIn(ctx context.Context, email, password string) (*UserSession, error) {
	if _, err := s.identity.SignInWithPassword(ctx, email, password); err != nil {
		return nil, err
	}
	return s.Session(), nil
}

// SignUp creates a credential and assigns the chosen role before the
// session is declared authenticated, so the first publish of protected
// content already carries the correct role. A role conflict is fatal to
// the attempt.
func (s *Store) SignUp(ctx context.Context, email, password, displayName string, role rolesdomain.Role) (*UserSession, error) {
	if !role.Valid() {
		return nil, rolesdomain.ErrInvalidRole
	}

	s.mu.Lock()
	s.pendingRole = &role
	s.pendingErr = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pendingRole = nil
		s.mu.Unlock()
	}()

	if _, err := s.identity.SignUp(ctx, email, password, displayName); err != nil {
		return nil, err
	}

	s.mu.Lock()
	pendingErr := s.pendingErr
	s.mu.Unlock()
	if pendingErr != nil {
		return nil, pendingErr
	}

	return s.Session(), nil
}

// SignInWithGoogle completes a Google credential: a first-time subject
// with no assignment defaults to the patient role.
func (s *Store) SignInWithGoogle(ctx context.Context, exchange func(context.Context) (*identitydomain.Credential, error)) (*UserSession, error) {
	patient := rolesdomain.RolePatient

	s.mu.Lock()
	s.defaultRole = &patient
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.defaultRole = nil
		s.mu.Unlock()
	}()

	if _, err := exchange(ctx); err != nil {
		return nil, err
	}
	return s.Session(), nil
}

// SignOut destroys the live session through the identity provider.
func (s *Store) SignOut(ctx context.Context) error {
	return s.identity.SignOut(ctx)
}

// handleCredential is the single transition point for credential events.
// A nil credential clears the session; a live one is resolved to a role
// and published as authenticated. Resolver failures are swallowed: the
// session still authenticates with RoleUnknown, because a user must
// always reach some state.
func (s *Store) handleCredential(ctx context.Context, cred *identitydomain.Credential) {
	if cred == nil {
		s.transition(StateAnonymous, nil)
		return
	}

	s.transition(StateAuthenticating, nil)

	s.mu.Lock()
	pendingRole := s.pendingRole
	defaultRole := s.defaultRole
	s.mu.Unlock()

	if pendingRole != nil {
		if err := s.resolver.Assign(ctx, cred.SubjectID, *pendingRole); err != nil {
			s.mu.Lock()
			s.pendingErr = err
			s.mu.Unlock()
			s.transition(StateAnonymous, nil)
			return
		}
	}

	role, err := s.resolver.Resolve(ctx, cred.SubjectID)
	if err != nil {
		log.Printf("[warn] operation=resolve_role subject=%s error=%v", cred.SubjectID, err)
		role = rolesdomain.RoleUnknown
	}

	if role == rolesdomain.RoleUnknown && defaultRole != nil {
		if err := s.resolver.Assign(ctx, cred.SubjectID, *defaultRole); err == nil {
			role = *defaultRole
		} else {
			log.Printf("[warn] operation=assign_default_role subject=%s error=%v", cred.SubjectID, err)
		}
	}

	s.transition(StateAuthenticated, &UserSession{
		SubjectID:   cred.SubjectID,
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
		AvatarURL:   cred.AvatarURL,
		Role:        role,
	})
}

func (s *Store) transition(state State, sess *UserSession) {
	s.mu.Lock()
	s.state = state
	s.session = sess
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state, sess)
	}
}
