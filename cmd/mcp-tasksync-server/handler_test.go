package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/awlabs/tasksync/internal/jira"
	prsync "github.com/awlabs/tasksync/internal/sync"
)

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("content length = %d, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestHandleExtractTaskKeys(t *testing.T) {
	h := NewHandler(prsync.New(jira.NewMockClient(), time.UTC))

	result, _, err := h.HandleExtractTaskKeys(context.Background(), nil, ExtractTaskKeysParams{
		Text: "Fixes AW-12 and AW-7, also AW-12 again",
	})
	if err != nil {
		t.Fatalf("HandleExtractTaskKeys() error: %v", err)
	}

	var body struct {
		TaskKeys []string `json:"task_keys"`
	}
	if err := json.Unmarshal([]byte(textContent(t, result)), &body); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(body.TaskKeys) != 2 || body.TaskKeys[0] != "AW-12" || body.TaskKeys[1] != "AW-7" {
		t.Errorf("task_keys = %v", body.TaskKeys)
	}
}

func TestHandleExtractTaskKeysEmpty(t *testing.T) {
	h := NewHandler(prsync.New(jira.NewMockClient(), time.UTC))

	result, _, err := h.HandleExtractTaskKeys(context.Background(), nil, ExtractTaskKeysParams{Text: "no keys here"})
	if err != nil {
		t.Fatalf("HandleExtractTaskKeys() error: %v", err)
	}
	if !strings.Contains(textContent(t, result), `"task_keys":[]`) {
		t.Errorf("result = %s, want empty array not null", textContent(t, result))
	}
}

func TestHandleCommentPreviewURL(t *testing.T) {
	client := jira.NewMockClient()
	h := NewHandler(prsync.New(client, time.UTC))

	result, _, err := h.HandleCommentPreviewURL(context.Background(), nil, CommentPreviewURLParams{
		PRNumber:   42,
		PRTitle:    "AW-12: add login",
		PreviewURL: "https://pr-42.preview.example.com",
		Actor:      "alice",
	})
	if err != nil {
		t.Fatalf("HandleCommentPreviewURL() error: %v", err)
	}
	if result.IsError {
		t.Errorf("IsError = true, want false: %s", textContent(t, result))
	}

	var body struct {
		PRNumber int `json:"pr_number"`
		Results  []struct {
			TaskKey string `json:"task_key"`
			Outcome string `json:"outcome"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(textContent(t, result)), &body); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if body.PRNumber != 42 || len(body.Results) != 1 {
		t.Fatalf("body = %+v", body)
	}
	if body.Results[0].TaskKey != "AW-12" || body.Results[0].Outcome != "created" {
		t.Errorf("results = %+v", body.Results)
	}
	if len(client.AddCommentCalls) != 1 {
		t.Errorf("add calls = %d, want 1", len(client.AddCommentCalls))
	}
}

func TestHandleCommentPreviewURLValidation(t *testing.T) {
	h := NewHandler(prsync.New(jira.NewMockClient(), time.UTC))

	if _, _, err := h.HandleCommentPreviewURL(context.Background(), nil, CommentPreviewURLParams{
		PRNumber: 1,
		PRTitle:  "AW-1",
	}); err == nil {
		t.Error("expected error for missing preview_url")
	}

	if _, _, err := h.HandleCommentPreviewURL(context.Background(), nil, CommentPreviewURLParams{
		PRNumber:   1,
		PreviewURL: "https://p.example.com",
	}); err == nil {
		t.Error("expected error for missing pr_title and pr_body")
	}
}

func TestHandleCommentPreviewURLReportsFailures(t *testing.T) {
	client := jira.NewMockClient()
	client.GetCommentsFunc = func(string) ([]jira.Comment, error) {
		return nil, context.DeadlineExceeded
	}
	h := NewHandler(prsync.New(client, time.UTC))

	result, _, err := h.HandleCommentPreviewURL(context.Background(), nil, CommentPreviewURLParams{
		PRNumber:   1,
		PRTitle:    "AW-1",
		PreviewURL: "https://p.example.com",
	})
	if err != nil {
		t.Fatalf("HandleCommentPreviewURL() error: %v", err)
	}
	if !result.IsError {
		t.Error("IsError = false, want true when a key fails")
	}
}
