// Package action dispatches the configured label operation and reports the
// HTTP result as a GitHub Actions output.
package action

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gha-utils/label-action/config"
	"github.com/gha-utils/label-action/gh"
)

// OutputName is the name of the action output holding the HTTP result.
const OutputName = "response"

// OutputFileEnvVar names the file GitHub Actions provides for step outputs.
const OutputFileEnvVar = "GITHUB_OUTPUT"

// GetenvFunc looks up an environment variable.
type GetenvFunc func(key string) string

// LabelClient is the subset of the GitHub client the dispatcher needs.
type LabelClient interface {
	AddLabels(ctx context.Context, labels string) (*gh.Response, error)
	SetLabels(ctx context.Context, labels string) (*gh.Response, error)
	RemoveLabel(ctx context.Context, label string) (*gh.Response, error)
	ClearLabels(ctx context.Context) (*gh.Response, error)
}

// Wrap applies the uniform prefix every failure is reported with before the
// process exits non-zero.
func Wrap(err error) error {
	return fmt.Errorf("an error occurred: %w", err)
}

// Runner validates the loaded config, performs the requested operation, and
// writes the result to the workflow's output file.
type Runner struct {
	cfg    config.Config
	client LabelClient
	logger zerolog.Logger
	getenv GetenvFunc
}

// Option is a function that configures the runner.
type Option func(*runnerOptions)

type runnerOptions struct {
	cfg    config.Config
	client LabelClient
	logger zerolog.Logger
	getenv GetenvFunc
}

// WithConfig sets the config for the runner.
func WithConfig(cfg config.Config) Option {
	return func(opts *runnerOptions) {
		opts.cfg = cfg
	}
}

// WithClient sets the GitHub client for the runner.
func WithClient(client LabelClient) Option {
	return func(opts *runnerOptions) {
		opts.client = client
	}
}

// WithLogger sets the logger for the runner.
func WithLogger(logger zerolog.Logger) Option {
	return func(opts *runnerOptions) {
		opts.logger = logger
	}
}

// WithGetenv sets the environment lookup used to find the output file.
// Useful for testing.
func WithGetenv(getenv GetenvFunc) Option {
	return func(opts *runnerOptions) {
		opts.getenv = getenv
	}
}

// New creates a new Runner.
func New(options ...Option) (*Runner, error) {
	opts := &runnerOptions{
		logger: zerolog.Nop(),
		getenv: os.Getenv,
	}
	for _, opt := range options {
		opt(opts)
	}

	if opts.client == nil {
		return nil, fmt.Errorf("a GitHub client is required")
	}

	return &Runner{
		cfg:    opts.cfg,
		client: opts.client,
		logger: opts.logger,
		getenv: opts.getenv,
	}, nil
}

// Run validates, dispatches the operation, and writes the action output.
// Validation runs in full before any network call. Every failure comes back
// wrapped by Wrap and no output is written for it.
func (r *Runner) Run(ctx context.Context) error {
	op, err := ParseOperation(r.cfg.Operation)
	if err != nil {
		return Wrap(err)
	}

	if op.RequiresLabels() && r.cfg.Labels == "" {
		return Wrap(fmt.Errorf("%w: the 'labels' variable is missing from the environment", config.ErrMissingVariable))
	}

	if err := r.cfg.Validate(); err != nil {
		return Wrap(err)
	}

	l := r.logger.With().
		Str("operation", string(op)).
		Str("owner", r.cfg.Owner).
		Str("repository", r.cfg.Repository).
		Int("obj_id", r.cfg.ObjectID).
		Logger()
	l.Debug().Msg("Dispatching operation")

	var resp *gh.Response
	switch op {
	case OperationAdd:
		resp, err = r.client.AddLabels(ctx, r.cfg.Labels)
	case OperationRemove:
		// The labels value names the single label to remove.
		resp, err = r.client.RemoveLabel(ctx, r.cfg.Labels)
	case OperationSet:
		resp, err = r.client.SetLabels(ctx, r.cfg.Labels)
	case OperationClear:
		resp, err = r.client.ClearLabels(ctx)
	}
	if err != nil {
		return Wrap(err)
	}

	l.Info().
		Int("status_code", resp.StatusCode).
		Msg("Operation complete")

	r.writeOutput(resp.String())
	return nil
}

// writeOutput appends response=<value> to the file named by GITHUB_OUTPUT.
// Outside a workflow, when GITHUB_OUTPUT is unset, it does nothing; there is
// no stdout fallback. A write failure is logged but never fails the run,
// since the API call itself already succeeded.
func (r *Runner) writeOutput(value string) {
	outputFile := r.getenv(OutputFileEnvVar)
	if outputFile == "" {
		r.logger.Debug().Msg("GITHUB_OUTPUT not set, skipping action output")
		return
	}

	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		r.logger.Error().Err(err).Str("output_file", outputFile).Msg("Failed to open action output file")
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			r.logger.Error().Err(closeErr).Msg("Failed to close action output file")
		}
	}()

	if _, err := fmt.Fprintf(f, "%s=%s\n", OutputName, value); err != nil {
		r.logger.Error().Err(err).Str("output_file", outputFile).Msg("Failed to write action output")
	}
}
