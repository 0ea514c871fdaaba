package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

func TestImportURLReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := testPipeline(t, "")
	draft, err := p.ImportURL(context.Background(), srv.URL+"/app")
	require.NoError(t, err)

	u, _ := url.Parse(srv.URL)
	app := draft.App
	assert.Equal(t, types.AppTypeWebApp, app.Type)
	assert.Equal(t, srv.URL+"/app", app.URL)
	assert.Equal(t, u.Hostname(), app.Name)
	assert.Equal(t, "Web app from "+u.Hostname(), app.Description)
	assert.Equal(t, "https://icons.example/?domain="+u.Hostname(), app.Favicon)
	assert.Nil(t, app.Content)
	assert.Equal(t, types.Reachable, app.Metadata.String(types.MetaReachability))
}

func TestImportURLUnreachableIsUnverified(t *testing.T) {
	p := testPipeline(t, "")
	draft, err := p.ImportURL(context.Background(), "http://127.0.0.1:1/")
	require.NoError(t, err)
	assert.Equal(t, types.Unverified, draft.App.Metadata.String(types.MetaReachability))
}

func TestImportURLRejectsMalformed(t *testing.T) {
	p := testPipeline(t, "")
	for _, raw := range []string{"", "ftp://example.com", "https://", "::nope"} {
		_, err := p.ImportURL(context.Background(), raw)
		assert.ErrorIs(t, err, types.ErrValidation, raw)
	}
}

func TestImportURLDropsWWW(t *testing.T) {
	p := testPipeline(t, "")
	p.cfg.FaviconService = ""
	draft, err := p.ImportURL(context.Background(), "http://www.example.invalid/")
	require.NoError(t, err)
	assert.Equal(t, "example.invalid", draft.App.Name)
	assert.Empty(t, draft.App.Favicon)
}

func TestImportGitHub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/hello" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"name":"hello","full_name":"octo/hello",
			"description":"A <em>tiny</em> demo","stargazers_count":5,"forks_count":2,
			"updated_at":"2024-05-01T10:00:00Z","homepage":"https://octo.github.io/hello/",
			"owner":{"login":"octo","avatar_url":"https://avatars.example/octo"}}`))
	}))
	defer srv.Close()

	p := testPipeline(t, srv.URL)
	draft, repo, err := p.ImportGitHub(context.Background(), "https://github.com/octo/hello")
	require.NoError(t, err)
	require.NotNil(t, repo)

	app := draft.App
	assert.Equal(t, types.AppTypeGitHub, app.Type)
	assert.Equal(t, "hello", app.Name)
	assert.Equal(t, "A tiny demo", app.Description)
	assert.Equal(t, "octo", app.Author)
	assert.Equal(t, "https://github.com/octo/hello", app.GitHubURL)
	assert.Equal(t, "https://octo.github.io/hello/", app.URL)
	assert.Equal(t, "https://avatars.example/octo", app.Favicon)
	assert.Equal(t, 5, app.Metadata["stars"])
	assert.Equal(t, 2, app.Metadata["forks"])
	assert.Equal(t, "2024-05-01T10:00:00Z", app.Metadata.String("updatedAt"))

	_, _, err = p.ImportGitHub(context.Background(), "https://github.com/octo/missing")
	var notFound *types.RepoNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.Repo)
}

func TestImportGitHubPagesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"site","owner":{"login":"octo"}}`))
	}))
	defer srv.Close()

	p := testPipeline(t, srv.URL)
	draft, _, err := p.ImportGitHub(context.Background(), "https://octo.github.io/site/")
	require.NoError(t, err)
	assert.Equal(t, "https://octo.github.io/site/", draft.App.URL)
	assert.Equal(t, "https://github.com/octo/site", draft.App.GitHubURL)
}

func TestImportGitHubDegradesWhenOffline(t *testing.T) {
	p := testPipeline(t, "http://127.0.0.1:1")
	draft, repo, err := p.ImportGitHub(context.Background(), "https://github.com/octo/hello.git")
	require.NoError(t, err)
	assert.Nil(t, repo)
	assert.Equal(t, "hello", draft.App.Name)
	assert.Equal(t, types.Unverified, draft.App.Metadata.String(types.MetaReachability))
}

func TestImportGitHubRejectsMalformed(t *testing.T) {
	p := testPipeline(t, "")
	_, _, err := p.ImportGitHub(context.Background(), "https://example.com/octo/hello")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestImportPWAWithManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"short_name":"Notes","description":"Take notes",
			"start_url":"/app/?source=pwa",
			"icons":[{"src":"/i/48.png","sizes":"48x48"},{"src":"/i/192.png","sizes":"192x192"}]}`))
	}))
	defer srv.Close()

	p := testPipeline(t, "")
	draft, err := p.ImportPWA(context.Background(), srv.URL+"/app/")
	require.NoError(t, err)

	app := draft.App
	assert.Equal(t, types.AppTypePWA, app.Type)
	assert.Equal(t, "Notes", app.Name)
	assert.Equal(t, "Take notes", app.Description)
	assert.Equal(t, srv.URL+"/i/192.png", app.Icon)
	assert.Equal(t, true, app.Metadata["manifest"])
	assert.Equal(t, srv.URL+"/app/?source=pwa", app.Metadata.String("startUrl"))
	assert.Equal(t, "Notes", app.Manifest.String("short_name"))
}

func TestImportPWAWithoutManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := testPipeline(t, "")
	draft, err := p.ImportPWA(context.Background(), srv.URL)
	require.NoError(t, err)

	u, _ := url.Parse(srv.URL)
	assert.Equal(t, u.Hostname(), draft.App.Name)
	assert.Equal(t, "Progressive Web App", draft.App.Description)
	assert.Equal(t, "pwa", draft.App.Category)
	assert.Equal(t, false, draft.App.Metadata["manifest"])
	assert.Empty(t, draft.App.Icon)
}
