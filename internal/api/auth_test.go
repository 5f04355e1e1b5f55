package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndRefresh(t *testing.T) {
	var loginBody credentials
	var refreshAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_ = json.NewDecoder(r.Body).Decode(&loginBody)
			_, _ = w.Write([]byte(`{"token":"t1","user":{"id":"u1","slug":"mario"}}`))
		case "/api/auth/refresh":
			refreshAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"token":"t2","user":{"id":"u1","slug":"mario"}}`))
		case "/api/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}, WithTokenSource(StaticToken("t1")))

	resp, err := c.Login(context.Background(), "m@x.dev", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, "mario", resp.User.Slug)
	assert.Equal(t, credentials{Email: "m@x.dev", Password: "hunter2"}, loginBody)

	resp, err = c.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t2", resp.Token)
	assert.Equal(t, "Bearer t1", refreshAuth)

	require.NoError(t, c.Logout(context.Background()))
}

func TestLoginWithoutTokenFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{}}`))
	})
	_, err := c.Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, errEmptyToken)
}
