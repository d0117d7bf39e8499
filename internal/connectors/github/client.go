package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPerPage is the page size requested from the backend.
	DefaultPerPage = 100

	// ProactiveRate paces outgoing requests (~1.2 req/sec) so the client
	// rarely hits the reactive throttle path at all.
	ProactiveRate = 1.2
)

// Options configures the GitHub client.
type Options struct {
	// Token is a personal access token. Empty means anonymous access,
	// which carries a much lower quota.
	Token string

	// BaseURL points at a GitHub Enterprise instance. Empty means the
	// public API endpoint.
	BaseURL string

	// PerPage overrides DefaultPerPage when positive.
	PerPage int

	Log zerolog.Logger
}

// Client wraps the go-github client behind the pipeline's driven ports.
// All remote calls are paced proactively and routed through the Caller's
// retry-on-throttle wrapper.
type Client struct {
	gh      *gh.Client
	caller  *Caller
	pace    *rate.Limiter
	perPage int
	log     zerolog.Logger
}

// NewClient builds a client from opts.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = DefaultTimeout
	} else {
		opts.Log.Warn().Msg("no access token configured; using anonymous access with a much lower quota")
	}

	ghc := gh.NewClient(httpClient)
	if opts.BaseURL != "" {
		var err error
		ghc, err = ghc.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configure enterprise endpoint: %w", err)
		}
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	c := &Client{
		gh:      ghc,
		pace:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
		perPage: perPage,
		log:     opts.Log,
	}
	c.caller = &Caller{Limits: c.Quotas, Log: opts.Log}
	return c, nil
}

// Quotas fetches the backend's current search and core rate-limit state.
func (c *Client) Quotas(ctx context.Context) (Quotas, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return Quotas{}, fmt.Errorf("get rate limits: %w", err)
	}

	var q Quotas
	if s := limits.GetSearch(); s != nil {
		q.Search = Quota{Remaining: s.Remaining, ResetAt: s.Reset.Time}
	}
	if core := limits.GetCore(); core != nil {
		q.Core = Quota{Remaining: core.Remaining, ResetAt: core.Reset.Time}
	}
	return q, nil
}

// Caller exposes the retry wrapper, mainly so single-call helpers outside
// the searcher path share the same retry budget semantics.
func (c *Client) Caller() *Caller {
	return c.caller
}
