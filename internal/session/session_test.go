package session

import (
	"context"
	"errors"
	"testing"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/kvstore"
	"github.com/cristianoliveira/retroshelf/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var _ query.Gate = (*Session)(nil)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	ret := m.Called(ctx, email, password)
	resp, _ := ret.Get(0).(*api.AuthResponse)
	return resp, ret.Error(1)
}

func (m *mockAuth) RefreshToken(ctx context.Context) (*api.AuthResponse, error) {
	ret := m.Called(ctx)
	resp, _ := ret.Get(0).(*api.AuthResponse)
	return resp, ret.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockAuth) Me(ctx context.Context) (*api.User, error) {
	ret := m.Called(ctx)
	user, _ := ret.Get(0).(*api.User)
	return user, ret.Error(1)
}

func authResponse(token string) *api.AuthResponse {
	return &api.AuthResponse{Token: token, User: api.User{ID: "u1", Slug: "mario"}}
}

func TestInitializeWithoutStoredToken(t *testing.T) {
	auth := &mockAuth{}
	s := New(kvstore.NewMemoryStore(), auth, nil)
	assert.False(t, s.Initialized())

	require.NoError(t, s.Initialize(context.Background()))

	assert.True(t, s.Initialized())
	assert.False(t, s.Authenticated())
	auth.AssertNotCalled(t, "RefreshToken", mock.Anything)
}

func TestInitializeRefreshesStoredToken(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(TokenKey, "old"))
	auth := &mockAuth{}
	auth.On("RefreshToken", mock.Anything).Return(authResponse("new"), nil).Once()
	s := New(kv, auth, nil)

	require.NoError(t, s.Initialize(context.Background()))

	assert.Equal(t, "new", s.Token())
	assert.Equal(t, "mario", s.User().Slug)
	stored, _, _ := kv.Get(TokenKey)
	assert.Equal(t, "new", stored)
}

func TestInitializeDropsRejectedToken(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(TokenKey, "revoked"))
	auth := &mockAuth{}
	auth.On("RefreshToken", mock.Anything).Return(nil, &api.Error{Kind: api.KindUnauthorized, Status: 401}).Once()
	s := New(kv, auth, nil)

	err := s.Initialize(context.Background())

	assert.Error(t, err)
	assert.True(t, s.Initialized(), "initialized even on failure")
	assert.False(t, s.Authenticated())
	_, ok, _ := kv.Get(TokenKey)
	assert.False(t, ok)
}

func TestInitializeKeepsTokenWhenOffline(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(TokenKey, "tok"))
	auth := &mockAuth{}
	auth.On("RefreshToken", mock.Anything).Return(nil, &api.Error{Kind: api.KindTransient, Status: 503}).Once()
	s := New(kv, auth, nil)

	assert.Error(t, s.Initialize(context.Background()))
	assert.True(t, s.Initialized())
	assert.Equal(t, "tok", s.Token())
}

func TestLoginStoresToken(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	auth := &mockAuth{}
	auth.On("Login", mock.Anything, "m@x.dev", "pw").Return(authResponse("t1"), nil).Once()
	s := New(kv, auth, nil)

	user, err := s.Login(context.Background(), "m@x.dev", "pw")
	require.NoError(t, err)
	assert.Equal(t, "mario", user.Slug)
	stored, _, _ := kv.Get(TokenKey)
	assert.Equal(t, "t1", stored)

	user.Slug = "changed"
	assert.Equal(t, "mario", s.User().Slug, "User returns a copy")
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	auth := &mockAuth{}
	auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, &api.Error{Kind: api.KindValidation}).Once()
	s := New(kvstore.NewMemoryStore(), auth, nil)

	_, err := s.Login(context.Background(), "a", "b")
	assert.Equal(t, api.KindValidation, api.Classify(err))
	assert.False(t, s.Authenticated())
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	auth := &mockAuth{}
	auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(authResponse("t1"), nil).Once()
	auth.On("Logout", mock.Anything).Return(errors.New("network down")).Once()
	s := New(kv, auth, nil)
	_, err := s.Login(context.Background(), "a", "b")
	require.NoError(t, err)

	err = s.Logout(context.Background())

	assert.Error(t, err)
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
	_, ok, _ := kv.Get(TokenKey)
	assert.False(t, ok)
}

func TestWhoamiRequiresToken(t *testing.T) {
	auth := &mockAuth{}
	s := New(kvstore.NewMemoryStore(), auth, nil)
	_, err := s.Whoami(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, s.Refresh(context.Background()), ErrNotLoggedIn)
}
