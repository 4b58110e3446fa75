package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	internalauth "github.com/mkessaci/digimart/internal/auth"
	"github.com/mkessaci/digimart/internal/models"
	"github.com/mkessaci/digimart/internal/repositories"
)

// In-memory fakes for service tests. They keep real state so multi-step
// flows (register then verify, issue then consume) can be exercised end to
// end, with error hooks for fault injection.

// memUserDirectory implements UserRepository over a map keyed by email.
type memUserDirectory struct {
	mu         sync.Mutex
	byEmail    map[string]*models.User
	failCreate error // when set, Create/CreateTx return this
}

func newMemUserDirectory() *memUserDirectory {
	return &memUserDirectory{byEmail: make(map[string]*models.User)}
}

func (d *memUserDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.byEmail {
		if u.ID == id {
			copy := *u
			return &copy, nil
		}
	}
	return nil, models.ErrNotFound
}

func (d *memUserDirectory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.byEmail[strings.ToLower(email)]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, models.ErrNotFound
}

func (d *memUserDirectory) Create(ctx context.Context, user *models.User) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failCreate != nil {
		return nil, d.failCreate
	}
	email := strings.ToLower(user.Email)
	if _, exists := d.byEmail[email]; exists {
		return nil, models.ErrConflict
	}
	stored := *user
	stored.ID = uuid.New().String()
	stored.Email = email
	d.byEmail[email] = &stored
	copy := stored
	return &copy, nil
}

func (d *memUserDirectory) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) (*models.User, error) {
	return d.Create(ctx, user)
}

func (d *memUserDirectory) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.byEmail {
		if u.ID == id {
			hash := passwordHash
			u.PasswordHash = &hash
			return nil
		}
	}
	return models.ErrNotFound
}

func (d *memUserDirectory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for email, u := range d.byEmail {
		if u.ID == id {
			delete(d.byEmail, email)
			return nil
		}
	}
	return models.ErrNotFound
}

func (d *memUserDirectory) List(ctx context.Context, params repositories.ListParams) ([]*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	users := make([]*models.User, 0, len(d.byEmail))
	for _, u := range d.byEmail {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		copy := *u
		users = append(users, &copy)
	}
	return users, nil
}

func (d *memUserDirectory) Count(ctx context.Context, params repositories.ListParams) (int, error) {
	users, _ := d.List(ctx, params)
	return len(users), nil
}

// memPendingStore implements PendingUserStore.
type memPendingStore struct {
	mu      sync.Mutex
	byToken map[string]*models.PendingUser
}

func newMemPendingStore() *memPendingStore {
	return &memPendingStore{byToken: make(map[string]*models.PendingUser)}
}

func (s *memPendingStore) Create(ctx context.Context, p *models.PendingUser) (*models.PendingUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *p
	s.byToken[p.Token] = &stored
	copy := stored
	return &copy, nil
}

func (s *memPendingStore) GetByToken(ctx context.Context, token string) (*models.PendingUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byToken[token]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, models.ErrNotFound
}

func (s *memPendingStore) GetByEmail(ctx context.Context, email string) (*models.PendingUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byToken {
		if p.Email == email {
			copy := *p
			return &copy, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memPendingStore) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, p := range s.byToken {
		if p.Email == email {
			delete(s.byToken, token)
		}
	}
	return nil
}

func (s *memPendingStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}

func (s *memPendingStore) DeleteByTokenTx(ctx context.Context, tx pgx.Tx, token string) error {
	return s.DeleteByToken(ctx, token)
}

// count returns the number of pending rows, for invariant assertions.
func (s *memPendingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byToken)
}

// expireToken back-dates a stored token, simulating clock advance.
func (s *memPendingStore) expireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byToken[token]; ok {
		p.ExpiresAt = time.Now().Add(-48 * time.Hour)
	}
}

// memResetStore implements ResetTokenStore.
type memResetStore struct {
	mu      sync.Mutex
	byToken map[string]*models.PasswordResetToken
}

func newMemResetStore() *memResetStore {
	return &memResetStore{byToken: make(map[string]*models.PasswordResetToken)}
}

func (s *memResetStore) Create(ctx context.Context, t *models.PasswordResetToken) (*models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *t
	s.byToken[t.Token] = &stored
	copy := stored
	return &copy, nil
}

func (s *memResetStore) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byToken[token]; ok {
		copy := *t
		return &copy, nil
	}
	return nil, models.ErrNotFound
}

func (s *memResetStore) GetByEmail(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.byToken {
		if t.Identifier == email {
			copy := *t
			return &copy, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memResetStore) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, t := range s.byToken {
		if t.Identifier == email {
			delete(s.byToken, token)
		}
	}
	return nil
}

func (s *memResetStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}

func (s *memResetStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byToken)
}

func (s *memResetStore) expireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byToken[token]; ok {
		t.ExpiresAt = time.Now().Add(-2 * time.Hour)
	}
}

// fakeTxRunner implements TxRunner without a database: fn runs with a nil
// tx, and the in-memory fakes ignore the tx handle.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

// mockEmailService records sends and can be told to fail.
type mockEmailService struct {
	mu                 sync.Mutex
	verificationEmails []string
	resetEmails        []string
	lastToken          string
	sendErr            error
}

func (m *mockEmailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.verificationEmails = append(m.verificationEmails, email)
	m.lastToken = token
	return nil
}

func (m *mockEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.resetEmails = append(m.resetEmails, email)
	m.lastToken = token
	return nil
}

// mockVendorStore implements VendorStore, recording created profiles.
type mockVendorStore struct {
	mu      sync.Mutex
	vendors []*models.Vendor
}

func (m *mockVendorStore) CreateTx(ctx context.Context, tx pgx.Tx, v *models.Vendor) (*models.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *v
	stored.ID = uuid.New().String()
	m.vendors = append(m.vendors, &stored)
	copy := stored
	return &copy, nil
}

// stubSessionIssuer implements SessionIssuer.
type stubSessionIssuer struct {
	token string
	err   error
}

func (s *stubSessionIssuer) Issue(user *models.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.token != "" {
		return s.token, nil
	}
	return "session-token-" + user.ID, nil
}

// stubOAuthProvider implements OAuthProvider.
type stubOAuthProvider struct {
	identity *internalauth.OAuthIdentity
	err      error
}

func (s *stubOAuthProvider) AuthCodeURL(provider, state string) (string, error) {
	return "https://provider.example.com/authorize?state=" + state, nil
}

func (s *stubOAuthProvider) Exchange(ctx context.Context, provider, code string) (*internalauth.OAuthIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}
