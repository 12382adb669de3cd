package gh

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_primary_ratelimit"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_secondary_ratelimit"
	"github.com/google/go-github/v73/github"
	"github.com/rs/zerolog"
	gh_graphql "github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gha-utils/label-action/base"
	"github.com/gha-utils/label-action/config"
)

const (
	// AcceptHeader is the GitHub JSON media type sent on every request.
	AcceptHeader = "application/vnd.github+json"
	// APIVersionHeader is the header carrying the configured GitHub API version.
	APIVersionHeader = "X-GitHub-Api-Version"
)

// Client holds the target identity for label operations and the transports
// to reach the GitHub API. The identity is fixed at construction; bad values
// surface as API error responses, not construction errors.
type Client struct {
	owner      string
	repository string
	objectID   int
	apiVersion string

	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	// Rest is the typed GitHub REST client, used by the read-only query commands.
	Rest *github.Client
	// GraphQL resolves whether the target object is an issue or a pull request.
	GraphQL *gh_graphql.Client
}

// ClientOption is a function that can be used to configure the GitHub client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	cfg        config.Config
	logger     zerolog.Logger
	httpClient *http.Client
	baseURL    string
}

// WithConfig sets the target identity and credentials from the loaded config.
func WithConfig(cfg config.Config) ClientOption {
	return func(c *clientOptions) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger for the GitHub client.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *clientOptions) {
		c.logger = logger
	}
}

// WithHTTPClient sets the HTTP client to use, replacing the default
// transport chain. Useful for testing.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *clientOptions) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets the base URL for the GitHub API. Useful for testing.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientOptions) {
		c.baseURL = baseURL
	}
}

// NewClient creates a new GitHub client for label operations.
//
// The default transport chain is logging transport -> oauth2 token transport
// -> rate limiter, shared by the raw REST path, the typed go-github client,
// and the GraphQL client.
func NewClient(options ...ClientOption) (*Client, error) {
	opts := &clientOptions{
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(opts)
	}

	baseURL := opts.baseURL
	if baseURL == "" {
		baseURL = opts.cfg.GitHub.BaseURL
	}
	if baseURL == "" {
		baseURL = config.DefaultGitHubBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	client := &Client{
		owner:      opts.cfg.Owner,
		repository: opts.cfg.Repository,
		objectID:   opts.cfg.ObjectID,
		apiVersion: opts.cfg.APIVersion,
		baseURL:    baseURL,
		logger:     opts.logger,
	}

	httpClient := opts.httpClient
	if httpClient == nil {
		tokenSource, err := setupAuth(opts.logger, opts.cfg.GitHub)
		if err != nil {
			return nil, fmt.Errorf("failed to setup authentication: %w", err)
		}

		defaultHeaders := make(http.Header)
		defaultHeaders.Set("Accept", AcceptHeader)
		if client.apiVersion != "" {
			defaultHeaders.Set(APIVersionHeader, client.apiVersion)
		}

		transport := base.NewTransport(
			"github",
			base.WithLogger(opts.logger),
			base.WithRequestHeaders(defaultHeaders),
		)

		if tokenSource != nil {
			transport = &oauth2.Transport{
				Source: tokenSource,
				Base:   transport,
			}
		}

		onPrimaryRateLimitHit := func(ctx *github_primary_ratelimit.CallbackContext) {
			l := opts.logger.Warn().Str("limit", "primary")
			if ctx.Request != nil {
				l = l.Str("request_url", ctx.Request.URL.String())
			}
			if ctx.ResetTime != nil {
				l = l.Str("reset_time", ctx.ResetTime.String())
			}
			l.Msg(base.RateLimitHitMsg)
		}

		onSecondaryRateLimitHit := func(ctx *github_secondary_ratelimit.CallbackContext) {
			l := opts.logger.Warn().Str("limit", "secondary")
			if ctx.Request != nil {
				l = l.Str("request_url", ctx.Request.URL.String())
			}
			if ctx.ResetTime != nil {
				l = l.Str("reset_time", ctx.ResetTime.String())
			}
			l.Msg(base.RateLimitHitMsg)
		}

		httpClient = github_ratelimit.NewClient(
			transport,
			github_primary_ratelimit.WithLimitDetectedCallback(onPrimaryRateLimitHit),
			github_secondary_ratelimit.WithLimitDetectedCallback(onSecondaryRateLimitHit),
		)
	}
	client.httpClient = httpClient

	rest := github.NewClient(httpClient)
	if baseURL != config.DefaultGitHubBaseURL {
		var err error
		rest, err = rest.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set GitHub base URL: %w", err)
		}
	}
	client.Rest = rest

	if baseURL != config.DefaultGitHubBaseURL {
		client.GraphQL = gh_graphql.NewEnterpriseClient(baseURL+"/graphql", httpClient)
	} else {
		client.GraphQL = gh_graphql.NewClient(httpClient)
	}

	return client, nil
}
