package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/sec"
	"github.com/taibuivan/mangaden/pkg/pointer"
)

// fakeRepository is an in-memory [Repository] keyed by user ID.
type fakeRepository struct {
	users map[string]*User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: map[string]*User{}}
}

func (f *fakeRepository) Create(_ context.Context, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeRepository) Update(_ context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, user := range f.users {
		if user.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// fakeSessionStore is an in-memory [SessionStore]. TTLs are recorded but
// never enforced; expiry belongs to Redis, not these tests.
type fakeSessionStore struct {
	sessions map[string]string // tokenHash -> userID
	ttls     map[string]time.Duration
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: map[string]string{},
		ttls:     map[string]time.Duration{},
	}
}

func (f *fakeSessionStore) Save(_ context.Context, tokenHash, userID string, ttl time.Duration) error {
	f.sessions[tokenHash] = userID
	f.ttls[tokenHash] = ttl
	return nil
}

func (f *fakeSessionStore) Resolve(_ context.Context, tokenHash string) (string, error) {
	if userID, ok := f.sessions[tokenHash]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Session")
}

func (f *fakeSessionStore) Revoke(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	delete(f.ttls, tokenHash)
	return nil
}

// fakeTokenProvider mints predictable access tokens.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, username, role string, _ time.Duration) (string, error) {
	return fmt.Sprintf("jwt.%s.%s.%s", userID, username, role), nil
}

func newTestService() (*Service, *fakeRepository, *fakeSessionStore) {
	repo := newFakeRepository()
	sessions := newFakeSessionStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, sessions, fakeTokenProvider{}, logger), repo, sessions
}

func register(t *testing.T, service *Service, username, email string) *User {
	t.Helper()
	user, err := service.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

func TestService_Register(t *testing.T) {
	service, repo, _ := newTestService()

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "GutsReader",
		Email:    "guts@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	// 1. Member role and a slugified profile handle by default
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.Equal(t, "gutsreader", user.Slug)

	// 2. Display name falls back to the username when omitted
	assert.Equal(t, "GutsReader", user.DisplayName)

	// 3. The stored hash verifies against the original password only
	stored := repo.users[user.ID]
	assert.True(t, sec.CheckPasswordHash("correct-horse", stored.PasswordHash))
	assert.False(t, sec.CheckPasswordHash("wrong-horse", stored.PasswordHash))
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
}

func TestService_Register_IdentityConflicts(t *testing.T) {
	service, _, _ := newTestService()
	register(t, service, "guts", "guts@example.com")

	// 1. Same email, different username
	_, err := service.Register(context.Background(), RegisterInput{
		Username: "griffith",
		Email:    "guts@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)

	// 2. Same username, different email
	_, err = service.Register(context.Background(), RegisterInput{
		Username: "guts",
		Email:    "other@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)
}

func TestService_Register_SlugCollision(t *testing.T) {
	service, repo, _ := newTestService()

	// Usernames differing only in case collide at the slug level
	first := register(t, service, "Casca", "casca1@example.com")
	second := register(t, service, "casca", "casca2@example.com")

	assert.Equal(t, "casca", repo.users[first.ID].Slug)
	assert.Equal(t, "casca-2", repo.users[second.ID].Slug)
}

func TestService_Login(t *testing.T) {
	service, _, sessions := newTestService()
	user := register(t, service, "guts", "guts@example.com")

	// 1. Login by email
	session, err := service.Login(context.Background(), LoginInput{
		Login:    "guts@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("jwt.%s.guts.member", user.ID), session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	// 2. The session is stored under the token HASH, never the raw token
	_, rawStored := sessions.sessions[session.RefreshToken]
	assert.False(t, rawStored)
	userID, err := sessions.Resolve(context.Background(), sec.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, RefreshTokenTTL, sessions.ttls[sec.HashToken(session.RefreshToken)])

	// 3. Login by username works too
	_, err = service.Login(context.Background(), LoginInput{
		Login:    "guts",
		Password: "correct-horse",
	})
	require.NoError(t, err)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	service, _, _ := newTestService()
	register(t, service, "guts", "guts@example.com")

	// Unknown identity and wrong password produce the same generic 401
	for _, input := range []LoginInput{
		{Login: "nobody@example.com", Password: "correct-horse"},
		{Login: "guts", Password: "wrong-horse"},
	} {
		_, err := service.Login(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
		assert.EqualError(t, err, "Invalid login credentials")
	}
}

func TestService_Logout(t *testing.T) {
	service, _, sessions := newTestService()
	register(t, service, "guts", "guts@example.com")

	session, err := service.Login(context.Background(), LoginInput{
		Login:    "guts",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))
	assert.Empty(t, sessions.sessions)

	// Idempotent: logging out a dead session is still a success
	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))
}

func TestService_RefreshSession_Rotation(t *testing.T) {
	service, _, _ := newTestService()
	user := register(t, service, "guts", "guts@example.com")

	session, err := service.Login(context.Background(), LoginInput{
		Login:    "guts",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	rotated, err := service.RefreshSession(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, rotated.User.ID)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// 1. The old token is burned by the rotation
	_, err = service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	// 2. The new token remains usable
	_, err = service.RefreshSession(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestService_UpdateProfile(t *testing.T) {
	service, _, _ := newTestService()
	user := register(t, service, "guts", "guts@example.com")

	updated, err := service.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Bio: pointer.To("Struggler."),
	})
	require.NoError(t, err)

	// Untouched fields survive a partial update
	assert.Equal(t, "Struggler.", updated.Bio)
	assert.Equal(t, "guts", updated.DisplayName)
	assert.Empty(t, updated.AvatarURL)

	// Clearing a field means sending an explicit empty string
	updated, err = service.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		DisplayName: pointer.To("The Black Swordsman"),
		Bio:         pointer.To(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "The Black Swordsman", updated.DisplayName)
	assert.Empty(t, updated.Bio)
}

func TestService_UpdateProfile_UnknownUser(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.UpdateProfile(context.Background(), "missing-id", UpdateProfileInput{})
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

func TestService_Me(t *testing.T) {
	service, _, _ := newTestService()
	user := register(t, service, "guts", "guts@example.com")

	found, err := service.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, found.Username)
}
