package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/digiticket/digiticket/internal/core/domain"
	"github.com/digiticket/digiticket/internal/core/ports"
	"github.com/digiticket/digiticket/internal/infrastructure/security"
)

// memStore is an in-memory CredentialStore with the same contract as the
// mongo adapter: assigned ids, unique email among non-deleted users, unique
// document pair, and transactional rollback.
type memStore struct {
	mu         sync.Mutex
	users      map[int]*domain.User
	clients    map[int]*domain.Client
	admins     map[int]*domain.Administrator
	nextUser   int
	nextClient int
	nextAdmin  int

	failClientSave error
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[int]*domain.User),
		clients: make(map[int]*domain.Client),
		admins:  make(map[int]*domain.Administrator),
	}
}

// txKey marks a context as already holding the store lock.
type txKey struct{}

func (m *memStore) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := cloneMap(m.users)
	clients := cloneMap(m.clients)
	admins := cloneMap(m.admins)
	nextUser, nextClient, nextAdmin := m.nextUser, m.nextClient, m.nextAdmin

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.users, m.clients, m.admins = users, clients, admins
		m.nextUser, m.nextClient, m.nextAdmin = nextUser, nextClient, nextAdmin
		return err
	}
	return nil
}

func cloneMap[V any](in map[int]*V) map[int]*V {
	out := make(map[int]*V, len(in))
	for k, v := range in {
		copy := *v
		out[k] = &copy
	}
	return out
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer m.lock(ctx)()
	for _, u := range m.users {
		if u.Email == email && !u.Deleted() {
			copy := *u
			return &copy, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) FindUserByID(ctx context.Context, id int) (*domain.User, error) {
	defer m.lock(ctx)()
	u, ok := m.users[id]
	if !ok || u.Deleted() {
		return nil, domain.ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}

func (m *memStore) EmailExists(ctx context.Context, email string) (bool, error) {
	defer m.lock(ctx)()
	for _, u := range m.users {
		if u.Email == email && !u.Deleted() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SaveUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	defer m.lock(ctx)()
	for id, existing := range m.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email && !existing.Deleted() {
			return nil, domain.ErrEmailTaken
		}
		if existing.DocumentType == user.DocumentType && existing.DocumentNumber == user.DocumentNumber && !existing.Deleted() {
			return nil, domain.ErrDocumentTaken
		}
	}

	copy := *user
	now := time.Now().UTC()
	if copy.ID == 0 {
		m.nextUser++
		copy.ID = m.nextUser
		copy.CreatedAt = now
	}
	copy.UpdatedAt = now
	m.users[copy.ID] = &copy

	out := copy
	return &out, nil
}

func (m *memStore) SaveClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	defer m.lock(ctx)()
	if m.failClientSave != nil {
		return nil, m.failClientSave
	}

	copy := *client
	now := time.Now().UTC()
	if copy.ID == 0 {
		m.nextClient++
		copy.ID = m.nextClient
		copy.CreatedAt = now
	}
	copy.UpdatedAt = now
	m.clients[copy.ID] = &copy

	out := copy
	return &out, nil
}

func (m *memStore) SaveAdministrator(ctx context.Context, admin *domain.Administrator) (*domain.Administrator, error) {
	defer m.lock(ctx)()
	copy := *admin
	now := time.Now().UTC()
	if copy.ID == 0 {
		m.nextAdmin++
		copy.ID = m.nextAdmin
		copy.CreatedAt = now
	}
	copy.UpdatedAt = now
	m.admins[copy.ID] = &copy

	out := copy
	return &out, nil
}

func (m *memStore) FindAdministratorByUserID(ctx context.Context, userID int) (*domain.Administrator, error) {
	defer m.lock(ctx)()
	for _, a := range m.admins {
		if a.UserID == userID {
			copy := *a
			return &copy, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// stubEmailCache records marks and can simulate hits and lookup failures.
type stubEmailCache struct {
	mu        sync.Mutex
	entries   map[string]bool
	lookupErr error
}

func newStubEmailCache() *stubEmailCache {
	return &stubEmailCache{entries: make(map[string]bool)}
}

func (c *stubEmailCache) IsRegistered(_ context.Context, email string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lookupErr != nil {
		return false, c.lookupErr
	}
	return c.entries[email], nil
}

func (c *stubEmailCache) MarkRegistered(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[email] = true
	return nil
}

func (c *stubEmailCache) Invalidate(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, email)
	return nil
}

func newTestAuthService(store ports.CredentialStore, cache ports.EmailCache) (*AuthService, *security.TokenIssuer) {
	hasher := security.NewBcryptHasher(4)
	issuer := security.NewTokenIssuer("test-secret", 15*time.Minute)
	return NewAuthService(store, cache, hasher, issuer, zerolog.Nop()), issuer
}

func registerInput() ports.RegisterClientInput {
	return ports.RegisterClientInput{
		FirstName:      "Ana",
		LastName:       "Torres",
		Email:          "a@x.com",
		Password:       "longpass1",
		DocumentType:   domain.DocumentDNI,
		DocumentNumber: "123",
		BirthDate:      time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		PhoneNumber:    "+51 999 888 777",
	}
}

func TestAuthService_RegisterClient_Success(t *testing.T) {
	store := newMemStore()
	svc, issuer := newTestAuthService(store, nil)

	res, err := svc.RegisterClient(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("RegisterClient returned error: %v", err)
	}
	if res.UserID != 1 {
		t.Fatalf("expected user id 1, got %d", res.UserID)
	}
	if res.FirstName != "Ana" {
		t.Fatalf("expected first name echoed, got %q", res.FirstName)
	}
	if res.Role != domain.RoleClient {
		t.Fatalf("expected role CLIENT, got %s", res.Role)
	}

	claims, err := issuer.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.UserID != res.UserID {
		t.Fatalf("token subject %d does not match user id %d", claims.UserID, res.UserID)
	}

	user := store.users[1]
	if user == nil {
		t.Fatalf("user not persisted")
	}
	if user.PasswordHash == nil || *user.PasswordHash == "longpass1" {
		t.Fatalf("password stored in plaintext or missing")
	}
	if user.Status != domain.StatusActive {
		t.Fatalf("expected status ACTIVE, got %s", user.Status)
	}
	if user.TermsAcceptedAt == nil {
		t.Fatalf("terms-accepted timestamp not set")
	}

	if len(store.clients) != 1 {
		t.Fatalf("expected one client profile, got %d", len(store.clients))
	}
	client := store.clients[1]
	if client.UserID != user.ID {
		t.Fatalf("client not linked to user: %d != %d", client.UserID, user.ID)
	}
}

func TestAuthService_RegisterClient_NormalizesEmail(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestAuthService(store, nil)

	in := registerInput()
	in.Email = "  A@X.com "
	if _, err := svc.RegisterClient(context.Background(), in); err != nil {
		t.Fatalf("RegisterClient returned error: %v", err)
	}
	if store.users[1].Email != "a@x.com" {
		t.Fatalf("stored email not normalized: %q", store.users[1].Email)
	}

	// the normalized form must also drive the duplicate check
	dup := registerInput()
	dup.DocumentNumber = "456"
	if _, err := svc.RegisterClient(context.Background(), dup); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken for normalized duplicate, got %v", err)
	}
}

func TestAuthService_RegisterClient_Duplicate(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestAuthService(store, nil)

	if _, err := svc.RegisterClient(context.Background(), registerInput()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.RegisterClient(context.Background(), registerInput()); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if len(store.users) != 1 || len(store.clients) != 1 {
		t.Fatalf("expected exactly one user+client pair, got %d users, %d clients", len(store.users), len(store.clients))
	}
}

func TestAuthService_RegisterClient_RollsBackOnClientFailure(t *testing.T) {
	store := newMemStore()
	store.failClientSave = errors.New("client insert failed")
	svc, _ := newTestAuthService(store, nil)

	if _, err := svc.RegisterClient(context.Background(), registerInput()); err == nil {
		t.Fatalf("expected registration to fail")
	}
	if len(store.users) != 0 {
		t.Fatalf("orphan user left after failed client save")
	}
	if len(store.clients) != 0 {
		t.Fatalf("client persisted despite failure")
	}
}

func TestAuthService_RegisterClient_ConcurrentSameEmail(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestAuthService(store, nil)

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RegisterClient(context.Background(), registerInput())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch err {
		case nil:
			succeeded++
		case domain.ErrEmailTaken:
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || conflicted != callers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", callers-1, succeeded, conflicted)
	}
	if len(store.users) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(store.users))
	}
}

func TestAuthService_RegisterClient_EmailCache(t *testing.T) {
	store := newMemStore()
	cache := newStubEmailCache()
	svc, _ := newTestAuthService(store, cache)

	if _, err := svc.RegisterClient(context.Background(), registerInput()); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if !cache.entries["a@x.com"] {
		t.Fatalf("email not marked in cache after registration")
	}

	// cache hit rejects without touching the store again
	if _, err := svc.RegisterClient(context.Background(), registerInput()); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken from cache hit, got %v", err)
	}
}

func TestAuthService_RegisterClient_CacheFailureFallsBack(t *testing.T) {
	store := newMemStore()
	cache := newStubEmailCache()
	cache.lookupErr = errors.New("redis down")
	svc, _ := newTestAuthService(store, cache)

	// a broken cache must not block registration
	if _, err := svc.RegisterClient(context.Background(), registerInput()); err != nil {
		t.Fatalf("registration failed with broken cache: %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	store := newMemStore()
	svc, issuer := newTestAuthService(store, nil)

	reg, err := svc.RegisterClient(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "a@x.com", "longpass1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.UserID != reg.UserID {
		t.Fatalf("expected user id %d, got %d", reg.UserID, res.UserID)
	}
	if res.FirstName != "Ana" || res.Role != domain.RoleClient {
		t.Fatalf("unexpected result: %+v", res)
	}

	claims, err := issuer.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.UserID != reg.UserID {
		t.Fatalf("token subject %d does not match stored id %d", claims.UserID, reg.UserID)
	}
}

func TestAuthService_Login_NormalizesEmail(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestAuthService(store, nil)

	if _, err := svc.RegisterClient(context.Background(), registerInput()); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), " A@X.COM ", "longpass1"); err != nil {
		t.Fatalf("login with unnormalized email failed: %v", err)
	}
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestAuthService(store, nil)

	if _, err := svc.RegisterClient(context.Background(), registerInput()); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), "a@x.com", "wrong")
	_, unknownEmail := svc.Login(context.Background(), "nobody@x.com", "longpass1")

	if wrongPass != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if unknownEmail != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}
	if wrongPass.Error() != unknownEmail.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPass, unknownEmail)
	}
}

func TestAuthService_Login_NoPasswordSet(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestAuthService(store, nil)

	if _, err := store.SaveUser(context.Background(), &domain.User{
		FirstName: "Sam",
		Email:     "sam@x.com",
		Role:      domain.RoleClient,
		Status:    domain.StatusActive,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := svc.Login(context.Background(), "sam@x.com", "anything"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for user without password, got %v", err)
	}
}
