package gh

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gha-utils/label-action/config"
	"github.com/gha-utils/label-action/internal/testhelpers"
)

func testConfig() config.Config {
	return config.Config{
		APIVersion: "2022-11-28",
		Owner:      "octocat",
		Repository: "hello-world",
		ObjectID:   42,
		GitHub: config.GitHub{
			Token: "test-token",
		},
	}
}

// recordedRequest captures what the server saw for one request.
type recordedRequest struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newTestServer(t *testing.T, statusCode int, responseBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var recorded []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		recorded = append(recorded, recordedRequest{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			header: r.Header.Clone(),
			body:   body,
		})
		w.WriteHeader(statusCode)
		_, err = w.Write([]byte(responseBody))
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)
	return server, &recorded
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient(
		WithConfig(testConfig()),
		WithBaseURL(baseURL),
		WithLogger(testhelpers.Logger(t)),
	)
	require.NoError(t, err)
	return client
}

func TestParseLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "multiple labels with spaces",
			input:    "bug, needs-review,p1",
			expected: []string{"bug", "needs-review", "p1"},
		},
		{
			name:     "single label",
			input:    "bug",
			expected: []string{"bug"},
		},
		{
			name:     "spaces inside names are stripped",
			input:    "help wanted, good first issue",
			expected: []string{"helpwanted", "goodfirstissue"},
		},
		{
			name:     "duplicates and order preserved",
			input:    "b,a,b",
			expected: []string{"b", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ParseLabels(tt.input))
		})
	}
}

func TestLabelsPayload(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(labelsPayload{Labels: ParseLabels("bug, needs-review,p1")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["bug","needs-review","p1"]}`, string(payload))

	payload, err = json.Marshal(labelsPayload{Labels: ParseLabels("bug")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["bug"]}`, string(payload))

	// Label names with quotes or backslashes must stay valid JSON
	payload, err = json.Marshal(labelsPayload{Labels: []string{`say-"hi"`, `back\slash`}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["say-\"hi\"","back\\slash"]}`, string(payload))
}

func TestClient_Operations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		call       func(ctx context.Context, c *Client) (*Response, error)
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{
			name: "add labels",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.AddLabels(ctx, "bug, needs-review,p1")
			},
			wantMethod: http.MethodPost,
			wantPath:   "/repos/octocat/hello-world/issues/42/labels",
			wantBody:   `{"labels":["bug","needs-review","p1"]}`,
		},
		{
			name: "set labels",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.SetLabels(ctx, "bug")
			},
			wantMethod: http.MethodPut,
			wantPath:   "/repos/octocat/hello-world/issues/42/labels",
			wantBody:   `{"labels":["bug"]}`,
		},
		{
			name: "remove label",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.RemoveLabel(ctx, "bug")
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/repos/octocat/hello-world/issues/42/labels/bug",
		},
		{
			name: "remove label with space escapes the name",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.RemoveLabel(ctx, "help wanted")
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/repos/octocat/hello-world/issues/42/labels/help%20wanted",
		},
		{
			name: "clear labels",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.ClearLabels(ctx)
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/repos/octocat/hello-world/issues/42/labels",
		},
		{
			name: "get issue labels",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.GetLabels(ctx, ScopeIssue)
			},
			wantMethod: http.MethodGet,
			wantPath:   "/repos/octocat/hello-world/issues/42/labels",
		},
		{
			name: "get pull request labels shares the issues endpoint",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.GetLabels(ctx, ScopePullRequest)
			},
			wantMethod: http.MethodGet,
			wantPath:   "/repos/octocat/hello-world/issues/42/labels",
		},
		{
			name: "get repository labels",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.GetLabels(ctx, ScopeRepository)
			},
			wantMethod: http.MethodGet,
			wantPath:   "/repos/octocat/hello-world/labels",
		},
		{
			name: "get single label",
			call: func(ctx context.Context, c *Client) (*Response, error) {
				return c.GetLabel(ctx, "bug")
			},
			wantMethod: http.MethodGet,
			wantPath:   "/repos/octocat/hello-world/labels/bug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, recorded := newTestServer(t, http.StatusOK, `[]`)
			client := newTestClient(t, server.URL)

			resp, err := tt.call(context.Background(), client)
			require.NoError(t, err)
			require.NotNil(t, resp)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "200 OK", resp.String())
			assert.Equal(t, []byte(`[]`), resp.Body)

			require.Len(t, *recorded, 1)
			req := (*recorded)[0]
			assert.Equal(t, tt.wantMethod, req.method)
			assert.Equal(t, tt.wantPath, req.path)

			assert.Equal(t, AcceptHeader, req.header.Get("Accept"))
			assert.Equal(t, "2022-11-28", req.header.Get(APIVersionHeader))
			assert.Equal(t, "Bearer test-token", req.header.Get("Authorization"))

			if tt.wantBody != "" {
				assert.Equal(t, "application/json", req.header.Get("Content-Type"))
				assert.JSONEq(t, tt.wantBody, string(req.body))
			} else {
				assert.Empty(t, req.body)
			}
		})
	}
}

func TestClient_Operations_ErrorResponsePassedThrough(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, http.StatusNotFound, `{"message":"Not Found"}`)
	client := newTestClient(t, server.URL)

	// A non-2xx response is not an error, the action reports it as-is
	resp, err := client.AddLabels(context.Background(), "bug")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "404 Not Found", resp.String())
	assert.JSONEq(t, `{"message":"Not Found"}`, string(resp.Body))
}

func TestClient_GetLabels_InvalidScope(t *testing.T) {
	t.Parallel()

	server, recorded := newTestServer(t, http.StatusOK, `[]`)
	client := newTestClient(t, server.URL)

	resp, err := client.GetLabels(context.Background(), Scope("invalid"))
	require.ErrorIs(t, err, ErrInvalidScope)
	assert.Nil(t, resp)
	assert.Empty(t, *recorded, "no request should be made for an invalid scope")
}

func TestClient_ListLabels(t *testing.T) {
	t.Parallel()

	t.Run("issue scope", func(t *testing.T) {
		t.Parallel()

		mockedHTTPClient := mock.NewMockedHTTPClient(
			mock.WithRequestMatch(
				mock.GetReposIssuesLabelsByOwnerByRepoByIssueNumber,
				[]github.Label{
					{Name: github.Ptr("bug"), Color: github.Ptr("d73a4a")},
					{Name: github.Ptr("p1"), Color: github.Ptr("0e8a16")},
				},
			),
		)
		client, err := NewClient(
			WithConfig(testConfig()),
			WithHTTPClient(mockedHTTPClient),
		)
		require.NoError(t, err)

		labels, err := client.ListLabels(context.Background(), ScopeIssue)
		require.NoError(t, err)
		require.Len(t, labels, 2)
		assert.Equal(t, "bug", labels[0].GetName())
		assert.Equal(t, "p1", labels[1].GetName())
	})

	t.Run("repository scope", func(t *testing.T) {
		t.Parallel()

		mockedHTTPClient := mock.NewMockedHTTPClient(
			mock.WithRequestMatch(
				mock.GetReposLabelsByOwnerByRepo,
				[]github.Label{
					{Name: github.Ptr("enhancement")},
				},
			),
		)
		client, err := NewClient(
			WithConfig(testConfig()),
			WithHTTPClient(mockedHTTPClient),
		)
		require.NoError(t, err)

		labels, err := client.ListLabels(context.Background(), ScopeRepository)
		require.NoError(t, err)
		require.Len(t, labels, 1)
		assert.Equal(t, "enhancement", labels[0].GetName())
	})

	t.Run("invalid scope", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(
			WithConfig(testConfig()),
			WithHTTPClient(mock.NewMockedHTTPClient()),
		)
		require.NoError(t, err)

		_, err = client.ListLabels(context.Background(), Scope("bogus"))
		require.ErrorIs(t, err, ErrInvalidScope)
	})
}

func TestClient_GetLabelDefinition(t *testing.T) {
	t.Parallel()

	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatch(
			mock.GetReposLabelsByOwnerByRepoByName,
			github.Label{
				Name:        github.Ptr("bug"),
				Color:       github.Ptr("d73a4a"),
				Description: github.Ptr("Something isn't working"),
			},
		),
	)
	client, err := NewClient(
		WithConfig(testConfig()),
		WithHTTPClient(mockedHTTPClient),
	)
	require.NoError(t, err)

	label, err := client.GetLabelDefinition(context.Background(), "bug")
	require.NoError(t, err)
	assert.Equal(t, "bug", label.GetName())
	assert.Equal(t, "d73a4a", label.GetColor())
	assert.Equal(t, "Something isn't working", label.GetDescription())
}
