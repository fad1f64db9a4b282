// Package jira implements the tracker boundary the sync engine talks to:
// comment read/write, status read and workflow transitions against the Jira
// REST v3 API.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/awlabs/tasksync/internal/adf"
)

// TransitionName is a symbolic workflow transition. The set is closed and
// maps to workflow-specific numeric codes.
type TransitionName string

const (
	TransitionToDo       TransitionName = "TO_DO"
	TransitionInProgress TransitionName = "IN_PROGRESS"
	TransitionInReview   TransitionName = "IN_REVIEW"
	TransitionDone       TransitionName = "DONE"
)

// transitionIDs maps symbolic names to the tracker's workflow codes.
var transitionIDs = map[TransitionName]int{
	TransitionToDo:       11,
	TransitionInProgress: 21,
	TransitionInReview:   2,
	TransitionDone:       31,
}

// statusNames maps each transition to the status name a task carries once the
// transition has been applied. Used for the idempotence guard.
var statusNames = map[TransitionName]string{
	TransitionToDo:       "To Do",
	TransitionInProgress: "In Progress",
	TransitionInReview:   "In Review",
	TransitionDone:       "Done",
}

// StatusName returns the workflow status a task has after this transition.
func (n TransitionName) StatusName() string {
	return statusNames[n]
}

// Comment is a tracker comment: an opaque document tree plus its id.
type Comment struct {
	ID   string   `json:"id"`
	Body adf.Node `json:"body"`
}

// Client is the narrow contract the sync engine depends on. Write operations
// return the HTTP status observed so callers can contract-check it; an error
// is returned only for transport-level failures.
type Client interface {
	GetComments(ctx context.Context, taskKey string) ([]Comment, error)
	AddComment(ctx context.Context, taskKey string, body adf.Node) (int, error)
	UpdateComment(ctx context.Context, taskKey, commentID string, body adf.Node) (int, error)
	GetStatus(ctx context.Context, taskKey string) (string, error)
	Transition(ctx context.Context, taskKey string, name TransitionName) (int, error)
}

// HTTPClient is the production Client over the Jira REST v3 API.
type HTTPClient struct {
	baseURL    string
	user       string
	apiToken   string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the given Jira site. baseURL is the site
// root, e.g. https://example.atlassian.net.
func NewHTTPClient(baseURL, user, apiToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		user:       user,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// GetComments fetches all comments on a task.
func (c *HTTPClient) GetComments(ctx context.Context, taskKey string) ([]Comment, error) {
	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/rest/api/3/issue/%s/comment", taskKey), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get comments for %s: unexpected status %d", taskKey, status)
	}

	var result struct {
		Comments []Comment `json:"comments"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode comments for %s: %w", taskKey, err)
	}
	return result.Comments, nil
}

// AddComment creates a comment on a task and returns the HTTP status.
func (c *HTTPClient) AddComment(ctx context.Context, taskKey string, body adf.Node) (int, error) {
	payload := map[string]any{"body": body}
	status, _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/rest/api/3/issue/%s/comment", taskKey), payload)
	return status, err
}

// UpdateComment replaces the body of an existing comment and returns the HTTP
// status.
func (c *HTTPClient) UpdateComment(ctx context.Context, taskKey, commentID string, body adf.Node) (int, error) {
	payload := map[string]any{"body": body}
	status, _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/rest/api/3/issue/%s/comment/%s", taskKey, commentID), payload)
	return status, err
}

// GetStatus returns the task's current workflow status name.
func (c *HTTPClient) GetStatus(ctx context.Context, taskKey string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/rest/api/3/issue/%s", taskKey), nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("get status for %s: unexpected status %d", taskKey, status)
	}

	var result struct {
		Fields struct {
			Status struct {
				Name string `json:"name"`
			} `json:"status"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode status for %s: %w", taskKey, err)
	}
	return result.Fields.Status.Name, nil
}

// Transition applies a workflow transition by symbolic name and returns the
// HTTP status.
func (c *HTTPClient) Transition(ctx context.Context, taskKey string, name TransitionName) (int, error) {
	id, ok := transitionIDs[name]
	if !ok {
		return 0, fmt.Errorf("unknown transition: %s", name)
	}

	payload := map[string]any{
		"transition": map[string]any{"id": id},
	}
	status, _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/rest/api/3/issue/%s/transitions", taskKey), payload)
	return status, err
}

// do performs one API call, retrying transient transport failures. It returns
// the final HTTP status and response body; non-2xx statuses are not errors
// here, callers decide what a status means for their operation.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request for %s %s: %w", method, path, err)
		}
	}

	var status int
	var respBody []byte

	err := retryWithBackoff(func() error {
		var body io.Reader
		if reqBody != nil {
			body = bytes.NewReader(reqBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("create request for %s %s: %w", method, path, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Basic "+c.basicAuth())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("jira %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response for %s %s: %w", method, path, err)
		}

		status = resp.StatusCode
		respBody = data
		return nil
	})

	return status, respBody, err
}

func (c *HTTPClient) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.user + ":" + c.apiToken))
}
