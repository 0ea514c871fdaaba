package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := client.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	return New(client.NewClient(cfg), srv.URL, "secret")
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw   string
		owner string
		repo  string
	}{
		{"https://github.com/octo/hello", "octo", "hello"},
		{"https://github.com/octo/hello.git", "octo", "hello"},
		{"https://github.com/octo/hello/tree/main", "octo", "hello"},
		{"https://octo.github.io/hello/", "octo", "hello"},
		{"github.com/octo/hello?tab=readme", "octo", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			owner, repo, err := ParseURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestParseURLRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "https://gitlab.com/octo/hello", "https://github.com/octo", "not a url"} {
		_, _, err := ParseURL(raw)
		assert.ErrorIs(t, err, types.ErrValidation, raw)
	}
}

func TestRepo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/hello", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "hello",
			"full_name": "octo/hello",
			"description": "Hello <b>world</b>",
			"stargazers_count": 42,
			"forks_count": 7,
			"updated_at": "2024-01-02T03:04:05Z",
			"owner": {"login": "octo", "avatar_url": "https://avatars.example/octo.png"}
		}`))
	})

	repo, err := c.Repo(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "octo/hello", repo.FullName)
	assert.Equal(t, 42, repo.Stars)
	assert.Equal(t, 7, repo.Forks)
	assert.Equal(t, "https://avatars.example/octo.png", repo.AvatarURL())
	assert.True(t, repo.UpdatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestRepoNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Repo(context.Background(), "octo", "missing")
	require.Error(t, err)

	var notFound *types.RepoNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.ErrorIs(t, err, types.ErrRepoNotFound)
}

func TestRepoTransportFailure(t *testing.T) {
	cfg := client.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = time.Second
	c := New(client.NewClient(cfg), "http://127.0.0.1:1", "")

	_, err := c.Repo(context.Background(), "octo", "hello")
	assert.ErrorIs(t, err, types.ErrNetworkUnavailable)
}
