package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"dentix/api/internal/models"
	"dentix/api/internal/repository"
	"dentix/api/internal/security"
)

// memUserStore mimics the postgres repository, including its conditional
// rotation: the swap only happens when the stored token still matches.
type memUserStore struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byID: map[string]models.User{}}
}

func (s *memUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[user.ID] = user
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) SetRefreshToken(_ context.Context, id string, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.RefreshToken = &token
	user.RefreshTokenExpiresAt = &expiresAt
	s.byID[id] = user
	return nil
}

func (s *memUserStore) RotateRefreshToken(_ context.Context, id string, current string, next string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.RefreshToken == nil || *user.RefreshToken != current {
		return repository.ErrStaleRefreshToken
	}
	if user.RefreshTokenExpiresAt == nil || !user.RefreshTokenExpiresAt.After(time.Now()) {
		return repository.ErrStaleRefreshToken
	}
	user.RefreshToken = &next
	user.RefreshTokenExpiresAt = &expiresAt
	s.byID[id] = user
	return nil
}

type memRoleStore struct {
	mu     sync.Mutex
	byUser map[string][]string
}

func newMemRoleStore() *memRoleStore {
	return &memRoleStore{byUser: map[string][]string{}}
}

func (s *memRoleStore) ListByUser(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byUser[userID], nil
}

func (s *memRoleStore) Assign(_ context.Context, userID string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = append(s.byUser[userID], role)
	return nil
}

func newTestService(t *testing.T) (*AuthService, *memUserStore, *memRoleStore) {
	t.Helper()

	issuer, err := security.NewIssuer("test-secret", "dentix-api", "dentix-clients", 15*time.Minute)
	require.NoError(t, err)

	users := newMemUserStore()
	roles := newMemRoleStore()
	refresh := NewRefreshManager(users, 7*24*time.Hour)
	svc := NewAuthService(users, roles, issuer, refresh, zerolog.Nop())
	return svc, users, roles
}

func seedUser(t *testing.T, users *memUserStore, roles *memRoleStore, email string, password string, role string) models.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		ID:           "u-" + email,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Test " + email,
	}
	require.NoError(t, users.Create(context.Background(), user))
	require.NoError(t, roles.Assign(context.Background(), user.ID, role))
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, users, roles := newTestService(t)
	user := seedUser(t, users, roles, "admin@clinic.test", "s3cret-pass", models.RoleAdmin)

	pair, err := svc.Login(context.Background(), "admin@clinic.test", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Refresh token must now be persisted on the user record.
	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	require.Equal(t, pair.RefreshToken, *stored.RefreshToken)
	require.True(t, stored.RefreshTokenExpiresAt.After(time.Now().Add(6*24*time.Hour)))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, users, roles := newTestService(t)
	seedUser(t, users, roles, "known@clinic.test", "right-password", models.RoleUser)

	_, unknownErr := svc.Login(context.Background(), "unknown@clinic.test", "whatever")
	_, wrongErr := svc.Login(context.Background(), "known@clinic.test", "wrong-password")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr, wrongErr)
}

func TestFailedLoginHasNoSideEffects(t *testing.T) {
	svc, users, roles := newTestService(t)
	user := seedUser(t, users, roles, "a@clinic.test", "pw-123456", models.RoleUser)

	_, err := svc.Login(context.Background(), "a@clinic.test", "bad password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Nil(t, stored.RefreshToken)
	require.Nil(t, stored.RefreshTokenExpiresAt)
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	svc, users, roles := newTestService(t)
	user := seedUser(t, users, roles, "u1@clinic.test", "pw-123456", models.RoleAdmin)

	first, err := svc.Login(context.Background(), "u1@clinic.test", "pw-123456")
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), user.ID, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old refresh token had its one use; a replay must fail.
	_, err = svc.Refresh(context.Background(), user.ID, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The rotated token still works.
	_, err = svc.Refresh(context.Background(), user.ID, second.RefreshToken)
	require.NoError(t, err)
}

func TestLoginInvalidatesPreviousRefreshToken(t *testing.T) {
	svc, users, roles := newTestService(t)
	user := seedUser(t, users, roles, "u2@clinic.test", "pw-123456", models.RoleUser)

	first, err := svc.Login(context.Background(), "u2@clinic.test", "pw-123456")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "u2@clinic.test", "pw-123456")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), user.ID, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, users, roles := newTestService(t)
	user := seedUser(t, users, roles, "u3@clinic.test", "pw-123456", models.RoleUser)

	pair, err := svc.Login(context.Background(), "u3@clinic.test", "pw-123456")
	require.NoError(t, err)

	// Force the stored expiry into the past; the string still matches.
	users.mu.Lock()
	stored := users.byID[user.ID]
	past := time.Now().Add(-time.Minute)
	stored.RefreshTokenExpiresAt = &past
	users.byID[user.ID] = stored
	users.mu.Unlock()

	_, err = svc.Refresh(context.Background(), user.ID, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRejectsUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "no-such-user", "some-token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	svc, users, roles := newTestService(t)
	user := seedUser(t, users, roles, "race@clinic.test", "pw-123456", models.RoleUser)

	pair, err := svc.Login(context.Background(), "race@clinic.test", "pw-123456")
	require.NoError(t, err)

	const workers = 16
	start := make(chan struct{})
	results := make(chan error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Refresh(context.Background(), user.ID, pair.RefreshToken)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	}
	require.Equal(t, 1, success)
}

func TestRegister(t *testing.T) {
	svc, _, roles := newTestService(t)

	user, pair, err := svc.Register(context.Background(), RegisterInput{
		Email:       "New@Clinic.Test",
		Password:    "pw-123456",
		DisplayName: "New Patient",
	})
	require.NoError(t, err)
	require.Equal(t, "new@clinic.test", user.Email)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	assigned, err := roles.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{models.RoleUser}, assigned)

	_, _, err = svc.Register(context.Background(), RegisterInput{
		Email:       "new@clinic.test",
		Password:    "other-pass",
		DisplayName: "Duplicate",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}
