package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/metadata"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/providers/github"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

const (
	defaultProbeTimeout = 5 * time.Second
	pwaDescription      = "Progressive Web App"
	pwaCategory         = "pwa"
)

func domainOf(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func (p *Pipeline) faviconFor(domain string) string {
	if p.cfg.FaviconService == "" {
		return ""
	}
	return fmt.Sprintf(p.cfg.FaviconService, url.QueryEscape(domain))
}

func (p *Pipeline) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// probe reports whether u answered a HEAD request within the probe timeout
func (p *Pipeline) probe(ctx context.Context, u *url.URL) string {
	pctx, cancel := p.bounded(ctx)
	defer cancel()

	resp, err := p.http.Head(pctx, "probe", u.String())
	if err != nil {
		p.logger.Warn("URL probe failed, marking unverified", zap.String("url", u.String()), zap.Error(err))
		return types.Unverified
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		p.logger.Warn("URL probe got server error, marking unverified",
			zap.String("url", u.String()),
			zap.Int("status", resp.StatusCode()),
		)
		return types.Unverified
	}
	return types.Reachable
}

// ImportURL builds a webapp draft referencing rawURL. An unreachable URL
// is not an error; the draft is marked unverified instead.
func (p *Pipeline) ImportURL(ctx context.Context, rawURL string) (*types.Draft, error) {
	u, err := utils.ValidateWebURL(rawURL, "url")
	if err != nil {
		return nil, err
	}
	domain := domainOf(u)

	app := types.App{
		Name:        heuristic(domain, utils.MaxNameLength),
		Description: heuristic("Web app from "+domain, utils.MaxDescriptionLength),
		Type:        types.AppTypeWebApp,
		URL:         u.String(),
		Favicon:     p.faviconFor(domain),
		Tags:        []string{},
		Metadata: types.Bag{
			types.MetaSource:       "url",
			types.MetaReachability: p.probe(ctx, u),
			"domain":               domain,
		},
	}
	return &types.Draft{App: app, Source: types.AppTypeWebApp}, nil
}

// ImportGitHub builds a github draft from a repository URL. A non-2xx
// answer from the repository endpoint fails with *types.RepoNotFoundError;
// an unreachable endpoint yields an unverified draft named after the repo.
func (p *Pipeline) ImportGitHub(ctx context.Context, rawURL string) (*types.Draft, *github.Repo, error) {
	owner, repo, err := github.ParseURL(rawURL)
	if err != nil {
		return nil, nil, err
	}

	app := types.App{
		Name:      heuristic(repo, utils.MaxNameLength),
		Type:      types.AppTypeGitHub,
		GitHubURL: fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		Author:    owner,
		Tags:      []string{},
		Metadata: types.Bag{
			types.MetaSource: "github",
			"owner":          owner,
			"repo":           repo,
		},
	}
	if strings.Contains(strings.ToLower(rawURL), ".github.io") {
		if u, err := utils.ValidateWebURL(rawURL, "url"); err == nil {
			app.URL = u.String()
		}
	}

	info, err := p.github.Repo(ctx, owner, repo)
	switch {
	case errors.Is(err, types.ErrRepoNotFound):
		return nil, nil, err
	case err != nil:
		p.logger.Warn("Repository lookup failed, importing unverified",
			zap.String("repo", owner+"/"+repo),
			zap.Error(err),
		)
		app.Metadata[types.MetaReachability] = types.Unverified
		return &types.Draft{App: app, Source: types.AppTypeGitHub}, nil, nil
	}

	app.Name = heuristic(info.Name, utils.MaxNameLength)
	app.Description = heuristic(metadata.StripMarkup(info.Description), utils.MaxDescriptionLength)
	if info.Owner.Login != "" {
		app.Author = info.Owner.Login
	}
	app.Favicon = info.AvatarURL()
	if app.URL == "" && info.Homepage != "" {
		if u, err := utils.ValidateWebURL(info.Homepage, "homepage"); err == nil {
			app.URL = u.String()
		}
	}
	app.Metadata[types.MetaReachability] = types.Reachable
	app.Metadata["fullName"] = info.FullName
	app.Metadata["stars"] = info.Stars
	app.Metadata["forks"] = info.Forks
	app.Metadata["avatarUrl"] = info.AvatarURL()
	if !info.UpdatedAt.IsZero() {
		app.Metadata["updatedAt"] = info.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return &types.Draft{App: app, Source: types.AppTypeGitHub}, info, nil
}

// webManifest is the subset of a W3C web app manifest the importer reads
type webManifest struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
	StartURL    string `json:"start_url"`
	Icons       []struct {
		Src   string `json:"src"`
		Sizes string `json:"sizes"`
	} `json:"icons"`
}

// ImportPWA builds a pwa draft. The manifest at /manifest.json is fetched
// best effort and fills name, description and icon when found.
func (p *Pipeline) ImportPWA(ctx context.Context, rawURL string) (*types.Draft, error) {
	u, err := utils.ValidateWebURL(rawURL, "url")
	if err != nil {
		return nil, err
	}
	domain := domainOf(u)
	manifestURL := u.ResolveReference(&url.URL{Path: "/manifest.json"})

	app := types.App{
		Name:        heuristic(domain, utils.MaxNameLength),
		Description: pwaDescription,
		Category:    pwaCategory,
		Type:        types.AppTypePWA,
		URL:         u.String(),
		Favicon:     p.faviconFor(domain),
		Tags:        []string{},
		Metadata: types.Bag{
			types.MetaSource: "pwa",
			"domain":         domain,
			"manifestUrl":    manifestURL.String(),
			"manifest":       false,
		},
	}

	raw, m := p.fetchManifest(ctx, manifestURL)
	if m != nil {
		app.Metadata["manifest"] = true
		app.Manifest = raw
		if name := firstNonEmpty(m.Name, m.ShortName); name != "" {
			app.Name = heuristic(metadata.StripMarkup(name), utils.MaxNameLength)
		}
		if desc := metadata.StripMarkup(m.Description); desc != "" {
			app.Description = heuristic(desc, utils.MaxDescriptionLength)
		}
		if icon := largestIcon(m); icon != "" {
			if ref, err := url.Parse(icon); err == nil {
				app.Icon = manifestURL.ResolveReference(ref).String()
			}
		}
		if m.StartURL != "" {
			if ref, err := url.Parse(m.StartURL); err == nil {
				app.Metadata["startUrl"] = manifestURL.ResolveReference(ref).String()
			}
		}
	}
	return &types.Draft{App: app, Source: types.AppTypePWA}, nil
}

func (p *Pipeline) fetchManifest(ctx context.Context, u *url.URL) (types.Bag, *webManifest) {
	mctx, cancel := p.bounded(ctx)
	defer cancel()

	resp, err := p.http.Get(mctx, "pwa_manifest", u.String())
	if err != nil {
		p.logger.Debug("Manifest unavailable", zap.String("url", u.String()), zap.Error(err))
		return nil, nil
	}
	if !resp.IsSuccess() {
		p.logger.Debug("Manifest not found", zap.String("url", u.String()), zap.Int("status", resp.StatusCode()))
		return nil, nil
	}

	var m webManifest
	if err := sonic.Unmarshal(resp.Body(), &m); err != nil {
		p.logger.Debug("Manifest unparseable", zap.String("url", u.String()), zap.Error(err))
		return nil, nil
	}
	raw := types.Bag{}
	_ = sonic.Unmarshal(resp.Body(), &raw)
	return raw, &m
}

// largestIcon picks the icon with the widest declared size
func largestIcon(m *webManifest) string {
	best, bestSize := "", -1
	for _, icon := range m.Icons {
		if icon.Src == "" {
			continue
		}
		size := 0
		for _, s := range strings.Fields(icon.Sizes) {
			var w, h int
			if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err == nil && w > size {
				size = w
			}
		}
		if size > bestSize {
			best, bestSize = icon.Src, size
		}
	}
	return best
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
