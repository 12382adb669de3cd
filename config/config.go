// Package config provides the configuration for the application.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultLogLevel is the default log level for the application.
	DefaultLogLevel = "info"
	// DefaultGitHubBaseURL is the default base URL for the GitHub API.
	DefaultGitHubBaseURL = "https://api.github.com"
)

// These variables are set at build time and describe the version and build of the application
var (
	Version   string
	Commit    string
	BuildTime = time.Now().Format("2006-01-02T15:04:05.000")
	BuiltBy   = "local"
	BuiltWith = runtime.Version()
)

// VersionString gives a full string of the version of the application.
func VersionString() string {
	return fmt.Sprintf(
		"%s on commit %s, built at %s with %s by %s",
		Version,
		Commit,
		BuildTime,
		BuiltWith,
		BuiltBy,
	)
}

// Config is the application configuration, set by flags, then environment
// variables, then a .env file. The target identity fields mirror the env
// block a workflow passes to the action.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogPath  string `mapstructure:"LOG_PATH"`

	// Target identity: which issue or pull request the operation applies to.
	APIVersion string `mapstructure:"API_VERSION"`
	Owner      string `mapstructure:"OWNER"`
	Repository string `mapstructure:"REPOSITORY"`
	ObjectID   int    `mapstructure:"OBJ_ID"`

	// Requested work.
	Operation string `mapstructure:"OPERATION"`
	Labels    string `mapstructure:"LABELS"`

	GitHub GitHub `mapstructure:",squash"`
}

// GitHub configures authentication to the GitHub API.
type GitHub struct {
	BaseURL string `mapstructure:"GITHUB_BASE_URL"`
	// A personal access or workflow token
	Token string `mapstructure:"TOKEN"`
	// Or GitHub App credentials
	AppID          string `mapstructure:"GITHUB_APP_ID"`
	PrivateKey     string `mapstructure:"GITHUB_PRIVATE_KEY"`
	PrivateKeyFile string `mapstructure:"GITHUB_PRIVATE_KEY_FILE"`
	InstallationID string `mapstructure:"GITHUB_INSTALLATION_ID"`
}

// HasAppAuth reports whether GitHub App credentials are configured.
func (g GitHub) HasAppAuth() bool {
	return g.AppID != "" && g.InstallationID != "" && (g.PrivateKey != "" || g.PrivateKeyFile != "")
}

// ErrMissingVariable is the base error for required variables absent from the environment.
var ErrMissingVariable = errors.New("missing required variable")

func missingErr(name string) error {
	return fmt.Errorf("%w: the '%s' variable is missing from the environment", ErrMissingVariable, name)
}

// ValidateRepo checks that the repository identity and credentials are
// complete. Enough for repository-level queries that don't target an issue.
func (c Config) ValidateRepo() error {
	if c.APIVersion == "" {
		return missingErr("api")
	}
	if c.Owner == "" {
		return missingErr("owner")
	}
	if c.Repository == "" {
		return missingErr("repository")
	}
	if c.GitHub.Token == "" && !c.GitHub.HasAppAuth() {
		return missingErr("token")
	}
	return nil
}

// Validate checks that the full target identity and credentials are complete.
// It runs before any network call; operation-specific checks live with the
// operation dispatch in the action package.
func (c Config) Validate() error {
	if err := c.ValidateRepo(); err != nil {
		return err
	}
	if c.ObjectID == 0 {
		return missingErr("obj_id")
	}
	return nil
}

// GetSecrets returns all secret values held in the config, for log redaction.
func (c Config) GetSecrets() []string {
	var secrets []string
	for _, s := range []string{c.GitHub.Token, c.GitHub.PrivateKey} {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// MarshalJSON renders the config with secret fields masked so it can be logged safely.
func (c Config) MarshalJSON() ([]byte, error) {
	const masked = "[REDACTED]"

	type alias Config // avoid recursing into this method
	clone := alias(c)
	if clone.GitHub.Token != "" {
		clone.GitHub.Token = masked
	}
	if clone.GitHub.PrivateKey != "" {
		clone.GitHub.PrivateKey = masked
	}
	return json.Marshal(clone)
}

// Option is a function that can be used to configure loading the config.
type Option func(*configOptions)

type configOptions struct {
	configFile string
	viper      *viper.Viper
}

// WithConfigFile sets the exact config file to load.
func WithConfigFile(configFile string) Option {
	return func(cfg *configOptions) {
		cfg.configFile = configFile
	}
}

// WithViper sets a custom viper instance to use. Useful for testing.
func WithViper(v *viper.Viper) Option {
	return func(cfg *configOptions) {
		cfg.viper = v
	}
}

// Load loads config from flags, environment variables, and an optional .env file.
func Load(options ...Option) (Config, error) {
	opts := &configOptions{
		configFile: ".env",
	}
	for _, opt := range options {
		opt(opts)
	}

	v := opts.viper
	if v == nil {
		v = viper.New()
		if err := BindConfig(nil, v); err != nil {
			return Config{}, err
		}
	}

	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
		v.SetConfigType("env")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is fine, the environment is the primary source
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// MustLoad is Load but panics if there is an error.
func MustLoad(options ...Option) Config {
	cfg, err := Load(options...)
	if err != nil {
		panic(err)
	}
	return cfg
}

func init() {
	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		if Version == "" {
			Version = buildInfo.Main.Version
		}
		if Commit == "" {
			Commit = buildInfo.Main.Sum
		}
		BuiltWith = buildInfo.GoVersion
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "dev"
	}
}
