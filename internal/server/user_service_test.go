package server

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/types"
)

// fakeDBClient is an in-memory DBClient for auth tests.
type fakeDBClient struct {
	usersByID    map[uuid.UUID]*db.User
	usersByEmail map[string]*db.User
	lastLogins   int
}

func newFakeDBClient() *fakeDBClient {
	return &fakeDBClient{
		usersByID:    map[uuid.UUID]*db.User{},
		usersByEmail: map[string]*db.User{},
	}
}

func (f *fakeDBClient) CreateUser(_ context.Context, email, passwordHash, fullName string) (uuid.UUID, error) {
	u := &db.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, FullName: fullName}
	f.usersByID[u.ID] = u
	f.usersByEmail[email] = u
	return u.ID, nil
}

func (f *fakeDBClient) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	return f.usersByID[id], nil
}

func (f *fakeDBClient) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	return f.usersByEmail[email], nil
}

func (f *fakeDBClient) CheckEmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.usersByEmail[email]
	return ok, nil
}

func (f *fakeDBClient) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	if u, ok := f.usersByID[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeDBClient) UpdateLastLogin(_ context.Context, _ uuid.UUID) error {
	f.lastLogins++
	return nil
}

func testPasswordConfig(t *testing.T) *config.PasswordConfig {
	t.Helper()
	return &config.PasswordConfig{BcryptCost: 10}
}

func TestRegisterAndLogin(t *testing.T) {
	client := newFakeDBClient()
	svc := NewUserService(client, testPasswordConfig(t))

	user, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Email:    "jane@example.com",
		Password: "secret-password",
		FullName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane Doe", user.FullName)

	loggedIn, err := svc.Login(context.Background(), &types.LoginRequest{
		Email:    "jane@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, 1, client.lastLogins)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeDBClient(), testPasswordConfig(t))

	req := &types.CreateUserRequest{Email: "jane@example.com", Password: "secret-password", FullName: "Jane"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.IsType(t, &ErrEmailAlreadyExists{}, err)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewUserService(newFakeDBClient(), testPasswordConfig(t))

	_, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Email: "jane@example.com", Password: "secret-password", FullName: "Jane",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email: "jane@example.com", Password: "wrong-password",
	})
	assert.IsType(t, &ErrInvalidCredentials{}, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewUserService(newFakeDBClient(), testPasswordConfig(t))

	_, err := svc.Login(context.Background(), &types.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	assert.IsType(t, &ErrInvalidCredentials{}, err)
}

func TestUpdatePassword(t *testing.T) {
	client := newFakeDBClient()
	svc := NewUserService(client, testPasswordConfig(t))

	user, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Email: "jane@example.com", Password: "secret-password", FullName: "Jane",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), user.ID, "wrong-password", "new-password-123")
	assert.IsType(t, &ErrPasswordMismatch{}, err)

	err = svc.UpdatePassword(context.Background(), user.ID, "secret-password", "new-password-123")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email: "jane@example.com", Password: "new-password-123",
	})
	assert.NoError(t, err)
}

func TestUpdatePasswordUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeDBClient(), testPasswordConfig(t))

	err := svc.UpdatePassword(context.Background(), uuid.New(), "a", "b")
	assert.IsType(t, &ErrUserNotFound{}, err)
}
