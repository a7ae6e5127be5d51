package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.UserID)
		assert.Equal(t, "secret", req.Password)

		_ = json.NewEncoder(w).Encode(loginResponse{Token: "issued-token", UserID: "alice"})
	}))
	defer server.Close()

	c := New(server.URL)
	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
	assert.Equal(t, "issued-token", c.Token())
}

func TestClient_LoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL)
	require.Error(t, c.Login(context.Background(), "alice", "wrong"))
	assert.Empty(t, c.Token())
}

func TestClient_ValidateSession(t *testing.T) {
	var status int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/validate", r.URL.Path)
		assert.Equal(t, "Bearer some-token", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"userId":"alice"}`))
		}
	}))
	defer server.Close()

	c := New(server.URL)
	c.SetToken("some-token")

	status = http.StatusOK
	valid, err := c.ValidateSession(context.Background())
	require.NoError(t, err)
	assert.True(t, valid)

	// Unauthorized is a negative result, not an error.
	status = http.StatusUnauthorized
	valid, err = c.ValidateSession(context.Background())
	require.NoError(t, err)
	assert.False(t, valid)

	status = http.StatusInternalServerError
	_, err = c.ValidateSession(context.Background())
	require.Error(t, err)
}

func TestClient_RegisterDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/devices/register", r.URL.Path)
		var req deviceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "device-token-1", req.DeviceToken)
		assert.Equal(t, "android", req.Platform)
	}))
	defer server.Close()

	c := New(server.URL)
	c.SetToken("some-token")
	require.NoError(t, c.RegisterDevice(context.Background(), "device-token-1", "android"))
}

func TestClient_SendNotification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notifications/send", r.URL.Path)
		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bob", req.UserID)
	}))
	defer server.Close()

	c := New(server.URL)
	c.SetToken("some-token")
	require.NoError(t, c.SendNotification(context.Background(), "bob", "Hi", "There"))
}
