package gh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v73/github"
)

// Scope selects which label set a query reads.
type Scope string

const (
	// ScopeRepository reads the labels defined on the repository.
	ScopeRepository Scope = "repository"
	// ScopeIssue reads the labels applied to the target issue.
	ScopeIssue Scope = "issue"
	// ScopePullRequest reads the labels applied to the target pull request.
	// Pull requests share the issues endpoint for labels.
	ScopePullRequest Scope = "pull_request"
)

// ErrInvalidScope is returned when a query names a scope outside
// {repository, issue, pull_request}. No request is made.
var ErrInvalidScope = errors.New("invalid object scope")

// ParseLabels splits a comma-separated label string into an ordered list of
// names. All spaces are stripped, order is preserved, and nothing is
// deduplicated.
func ParseLabels(labels string) []string {
	return strings.Split(strings.ReplaceAll(labels, " ", ""), ",")
}

// labelsPayload is the request body for the add and set operations.
type labelsPayload struct {
	Labels []string `json:"labels"`
}

// issueLabelsPath is the labels collection of the target issue or pull request.
func (c *Client) issueLabelsPath() string {
	return fmt.Sprintf("/repos/%s/%s/issues/%d/labels", c.owner, c.repository, c.objectID)
}

// repoLabelsPath is the labels collection defined on the repository.
func (c *Client) repoLabelsPath() string {
	return fmt.Sprintf("/repos/%s/%s/labels", c.owner, c.repository)
}

// AddLabels appends the given labels to the target. Existing labels are kept.
func (c *Client) AddLabels(ctx context.Context, labels string) (*Response, error) {
	c.logger.Info().Str("labels", labels).Msg("Adding labels")
	return c.do(ctx, http.MethodPost, c.issueLabelsPath(), labelsPayload{Labels: ParseLabels(labels)})
}

// SetLabels replaces the target's full label set with the given labels.
func (c *Client) SetLabels(ctx context.Context, labels string) (*Response, error) {
	c.logger.Info().Str("labels", labels).Msg("Setting labels")
	return c.do(ctx, http.MethodPut, c.issueLabelsPath(), labelsPayload{Labels: ParseLabels(labels)})
}

// RemoveLabel removes exactly one named label from the target.
func (c *Client) RemoveLabel(ctx context.Context, label string) (*Response, error) {
	c.logger.Info().Str("label", label).Msg("Removing label")
	return c.do(ctx, http.MethodDelete, c.issueLabelsPath()+"/"+url.PathEscape(label), nil)
}

// ClearLabels removes all labels from the target.
func (c *Client) ClearLabels(ctx context.Context) (*Response, error) {
	c.logger.Info().Msg("Clearing all labels")
	return c.do(ctx, http.MethodDelete, c.issueLabelsPath(), nil)
}

// GetLabels reads the labels for the given scope: the repository's defined
// labels, or the labels applied to the target issue or pull request.
func (c *Client) GetLabels(ctx context.Context, scope Scope) (*Response, error) {
	var path string
	switch scope {
	case ScopeRepository:
		path = c.repoLabelsPath()
	case ScopeIssue, ScopePullRequest:
		path = c.issueLabelsPath()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// GetLabel reads a single label definition by name.
func (c *Client) GetLabel(ctx context.Context, name string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.repoLabelsPath()+"/"+url.PathEscape(name), nil)
}

// ListLabels returns the typed labels for the given scope, paginating through
// the full set. It backs the read-only query commands; the action operations
// use the raw responses above.
func (c *Client) ListLabels(ctx context.Context, scope Scope) ([]*github.Label, error) {
	opts := &github.ListOptions{PerPage: 100}

	var all []*github.Label
	for {
		var (
			labels []*github.Label
			resp   *github.Response
			err    error
		)
		switch scope {
		case ScopeRepository:
			labels, resp, err = c.Rest.Issues.ListLabels(ctx, c.owner, c.repository, opts)
		case ScopeIssue, ScopePullRequest:
			labels, resp, err = c.Rest.Issues.ListLabelsByIssue(ctx, c.owner, c.repository, c.objectID, opts)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s labels: %w", scope, err)
		}
		all = append(all, labels...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// GetLabelDefinition returns the typed definition of a single repository label.
func (c *Client) GetLabelDefinition(ctx context.Context, name string) (*github.Label, error) {
	label, _, err := c.Rest.Issues.GetLabel(ctx, c.owner, c.repository, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get label %q: %w", name, err)
	}
	return label, nil
}
