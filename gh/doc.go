// Package gh provides the GitHub clients used by the action.
//
// This package includes:
//   - a raw labels REST client whose responses are reported verbatim as the action output
//   - a typed go-github client backing the read-only query commands
//   - GraphQL object-type resolution to distinguish issues from pull requests
//   - authentication via a plain token or GitHub App installation tokens
package gh
