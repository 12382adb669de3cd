package gh

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jferrl/go-githubauth"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/gha-utils/label-action/config"
)

var (
	// ErrNoCredentials is returned when neither a token nor GitHub App credentials are provided.
	ErrNoCredentials = errors.New("no GitHub credentials provided")
	// ErrNoGitHubPrivateKey is returned when no GitHub App private key is provided.
	ErrNoGitHubPrivateKey = errors.New("no GitHub App private key provided")
	// ErrNoGitHubInstallationID is returned when no GitHub App installation ID is provided.
	ErrNoGitHubInstallationID = errors.New("no GitHub App installation ID provided")
	// ErrInvalidGitHubAppID is returned when the GitHub App ID is invalid.
	ErrInvalidGitHubAppID = errors.New("invalid GitHub App ID")
	// ErrInvalidGitHubInstallationID is returned when the GitHub App installation ID is invalid.
	ErrInvalidGitHubInstallationID = errors.New("invalid GitHub App installation ID")
)

// setupAuth builds the token source for API requests. A plain token takes
// precedence; otherwise GitHub App credentials mint installation tokens.
func setupAuth(l zerolog.Logger, cfg config.GitHub) (oauth2.TokenSource, error) {
	if cfg.Token != "" {
		l.Debug().Msg("Using GitHub token for authentication")
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}), nil
	}

	if cfg.AppID == "" {
		return nil, ErrNoCredentials
	}

	l.Debug().Str("app_id", cfg.AppID).Msg("Using GitHub App authentication")
	appID, err := strconv.ParseInt(cfg.AppID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGitHubAppID, err)
	}

	var privateKeyBytes []byte
	if cfg.PrivateKey != "" {
		privateKeyBytes = []byte(cfg.PrivateKey)
	} else if cfg.PrivateKeyFile != "" {
		privateKeyBytes, err = os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, err
		}
	}

	if len(privateKeyBytes) == 0 {
		return nil, ErrNoGitHubPrivateKey
	}

	if cfg.InstallationID == "" {
		return nil, ErrNoGitHubInstallationID
	}
	installationID, err := strconv.ParseInt(cfg.InstallationID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGitHubInstallationID, err)
	}

	appTokenSource, err := githubauth.NewApplicationTokenSource(appID, privateKeyBytes)
	if err != nil {
		return nil, err
	}

	return githubauth.NewInstallationTokenSource(installationID, appTokenSource), nil
}
