package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// DefaultAPI is the public GitHub REST endpoint
const DefaultAPI = "https://api.github.com"

var (
	repoPath  = regexp.MustCompile(`github\.com/([^/?#]+)/([^/?#]+)`)
	pagesPath = regexp.MustCompile(`([^/.?#]+)\.github\.io/([^/?#]+)`)
)

// Repo is the subset of the repository resource the launcher keeps
type Repo struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Homepage    string    `json:"homepage"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	UpdatedAt   time.Time `json:"updated_at"`
	Owner       struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	} `json:"owner"`
}

// AvatarURL returns the owner's avatar
func (r *Repo) AvatarURL() string {
	return r.Owner.AvatarURL
}

// ParseURL extracts owner and repository from a github.com/{owner}/{repo}
// or {owner}.github.io/{repo} URL
func ParseURL(raw string) (owner, repo string, err error) {
	raw = strings.TrimSpace(raw)
	for _, re := range []*regexp.Regexp{repoPath, pagesPath} {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		owner = m[1]
		repo = strings.TrimSuffix(m[2], ".git")
		if owner != "" && repo != "" {
			return owner, repo, nil
		}
	}
	return "", "", types.NewValidationError("url", "must be a github.com/{owner}/{repo} or {owner}.github.io/{repo} URL")
}

// Client calls the repository metadata endpoint
type Client struct {
	http  *client.Client
	base  string
	token string
}

// New creates a client against base (DefaultAPI when empty)
func New(c *client.Client, base, token string) *Client {
	if base == "" {
		base = DefaultAPI
	}
	return &Client{
		http:  c,
		base:  strings.TrimRight(base, "/"),
		token: token,
	}
}

// Repo fetches owner/repo. A non-2xx status yields *types.RepoNotFoundError;
// transport failures wrap types.ErrNetworkUnavailable.
func (c *Client) Repo(ctx context.Context, owner, repo string) (*Repo, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.base, url.PathEscape(owner), url.PathEscape(repo))

	resp, err := c.http.Do(ctx, "github_repo", func(r *resty.Request) (*resty.Response, error) {
		r.SetHeader("Accept", "application/vnd.github+json")
		if c.token != "" {
			r.SetAuthToken(c.token)
		}
		return r.Get(endpoint)
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &types.RepoNotFoundError{Owner: owner, Repo: repo, Status: resp.StatusCode()}
	}

	var out Repo
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode repository %s/%s: %w", owner, repo, err)
	}
	if out.Name == "" {
		out.Name = repo
	}
	return &out, nil
}
