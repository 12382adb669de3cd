package gh

import (
	"context"
	"fmt"

	gh_graphql "github.com/shurcooL/githubv4"
)

// ResolveScope determines through one GraphQL query whether the configured
// object number names an issue or a pull request. Used by the query commands
// when no scope is given.
func (c *Client) ResolveScope(ctx context.Context) (Scope, error) {
	var query struct {
		Repository struct {
			IssueOrPullRequest struct {
				TypeName string `graphql:"__typename"`
			} `graphql:"issueOrPullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]any{
		"owner":  gh_graphql.String(c.owner),
		"name":   gh_graphql.String(c.repository),
		"number": gh_graphql.Int(c.objectID),
	}

	if err := c.GraphQL.Query(ctx, &query, variables); err != nil {
		return "", fmt.Errorf("failed to resolve object type: %w", err)
	}

	switch query.Repository.IssueOrPullRequest.TypeName {
	case "Issue":
		return ScopeIssue, nil
	case "PullRequest":
		return ScopePullRequest, nil
	}
	return "", fmt.Errorf("unexpected object type %q for %s/%s#%d",
		query.Repository.IssueOrPullRequest.TypeName, c.owner, c.repository, c.objectID)
}
