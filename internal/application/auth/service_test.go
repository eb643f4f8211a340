package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/pawnfin/console/internal/domain/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, sess *session.Handle, username, password string) (string, error) {
	args := m.Called(ctx, sess, username, password)
	return args.String(0), args.Error(1)
}

type staticNames map[string]string

func (s staticNames) DisplayName(token string) string { return s[token] }

type memStore struct {
	states map[string]session.State
}

func (m *memStore) Load(_ context.Context, id string) (session.State, error) {
	st, ok := m.states[id]
	if !ok {
		return session.State{}, session.ErrNotFound
	}
	return st, nil
}

func (m *memStore) Save(_ context.Context, id string, st session.State) error {
	m.states[id] = st
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.states, id)
	return nil
}

func (m *memStore) Close() error { return nil }

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("blank fields are rejected locally", func(t *testing.T) {
		gw := new(MockGateway)
		sess := session.NewHandle(&memStore{states: map[string]session.State{}}, "s", session.State{})
		err := NewService(gw, nil).Login(ctx, sess, " ", "pw")
		assert.EqualError(t, err, MsgCredentialsRequired)
		gw.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token is stored and company reset", func(t *testing.T) {
		store := &memStore{states: map[string]session.State{}}
		sess := session.NewHandle(store, "s", session.State{Token: "old", CompanyID: "c1"})
		gw := new(MockGateway)
		gw.On("Login", ctx, sess, "admin", "pw").Return("tok", nil)

		require.NoError(t, NewService(gw, nil).Login(ctx, sess, "admin", "pw"))
		assert.NotEqual(t, "s", sess.ID())
		assert.Equal(t, session.State{Token: "tok"}, store.states[sess.ID()])
		assert.NotContains(t, store.states, "s")
	})

	t.Run("backend error is returned", func(t *testing.T) {
		sess := session.NewHandle(&memStore{states: map[string]session.State{}}, "s", session.State{})
		gw := new(MockGateway)
		gw.On("Login", ctx, sess, "admin", "bad").Return("", errors.New("Invalid credentials"))
		err := NewService(gw, nil).Login(ctx, sess, "admin", "bad")
		assert.EqualError(t, err, "Invalid credentials")
		assert.Empty(t, sess.Token())
	})

	t.Run("missing token", func(t *testing.T) {
		sess := session.NewHandle(&memStore{states: map[string]session.State{}}, "s", session.State{})
		gw := new(MockGateway)
		gw.On("Login", ctx, sess, "admin", "pw").Return("", nil)
		assert.ErrorIs(t, NewService(gw, nil).Login(ctx, sess, "admin", "pw"), ErrNoToken)
	})
}

func TestService_LogoutAndCurrentUser(t *testing.T) {
	ctx := context.Background()
	store := &memStore{states: map[string]session.State{"s": {Token: "tok", CompanyID: "c"}}}
	sess := session.NewHandle(store, "s", store.states["s"])
	svc := NewService(new(MockGateway), staticNames{"tok": "ravi"})

	assert.Equal(t, "ravi", svc.CurrentUser(sess))
	require.NoError(t, svc.Logout(ctx, sess))
	assert.Empty(t, store.states)
	assert.Equal(t, "", svc.CurrentUser(sess))
}
