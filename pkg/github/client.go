package github

import (
	"context"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v84/github"

	"github.com/smykla-skalski/svcsync/pkg/logger"
)

// Client wraps the GitHub API client with rate limiting and logging.
type Client struct {
	*github.Client
	log *logger.Logger
}

// NewClient creates a GitHub API client with rate limiting. The token is
// validated with a rate-limit probe before the client is handed out.
func NewClient(ctx context.Context, log *logger.Logger, token string) (*Client, error) {
	if token == "" {
		return nil, errors.WithStack(ErrTokenNotFound)
	}

	rateLimiter := github_ratelimit.NewClient(nil)

	client := github.NewClient(rateLimiter).WithAuthToken(token)

	if err := validateToken(ctx, client); err != nil {
		return nil, errors.Wrap(err, "validating token")
	}

	log.Debug("GitHub client initialized")

	return &Client{
		Client: client,
		log:    log,
	}, nil
}

// TokenFromEnv returns the first token found in GITHUB_TOKEN or GH_TOKEN.
func TokenFromEnv() (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token, nil
	}

	return "", errors.WithStack(ErrTokenNotFound)
}

func validateToken(ctx context.Context, client *github.Client) error {
	_, resp, err := client.RateLimit.Get(ctx)
	if err != nil {
		return errors.Wrap(ErrValidatingToken, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrValidatingToken, "unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
