package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	prsync "github.com/awlabs/tasksync/internal/sync"
	"github.com/awlabs/tasksync/internal/taskkey"
)

// Handler implements the MCP tools over the sync engine.
type Handler struct {
	syncer *prsync.Syncer
}

// NewHandler creates a handler.
func NewHandler(syncer *prsync.Syncer) *Handler {
	return &Handler{syncer: syncer}
}

// ExtractTaskKeysParams defines the input for extract_task_keys.
type ExtractTaskKeysParams struct {
	Text string `json:"text" jsonschema:"The text to scan for task keys"`
}

// HandleExtractTaskKeys handles the extract_task_keys tool call.
func (h *Handler) HandleExtractTaskKeys(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params ExtractTaskKeysParams,
) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Tasksync Server] Received extract_task_keys request")

	keys := taskkey.Extract(params.Text)

	payload, err := json.Marshal(map[string]any{"task_keys": keys})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, nil, nil
}

// CommentPreviewURLParams defines the input for comment_preview_url.
type CommentPreviewURLParams struct {
	PRNumber   int    `json:"pr_number" jsonschema:"The pull request number"`
	PRTitle    string `json:"pr_title" jsonschema:"The pull request title"`
	PRBody     string `json:"pr_body,omitempty" jsonschema:"The pull request body"`
	PreviewURL string `json:"preview_url" jsonschema:"The preview deployment URL"`
	Actor      string `json:"actor,omitempty" jsonschema:"The user who triggered the update"`
}

// HandleCommentPreviewURL handles the comment_preview_url tool call.
func (h *Handler) HandleCommentPreviewURL(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params CommentPreviewURLParams,
) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Tasksync Server] Received comment_preview_url request for PR #%d", params.PRNumber)

	if params.PreviewURL == "" {
		return nil, nil, fmt.Errorf("preview_url parameter is required")
	}
	if params.PRTitle == "" && params.PRBody == "" {
		return nil, nil, fmt.Errorf("pr_title or pr_body is required")
	}

	pr := prsync.PRContext{
		Number: params.PRNumber,
		Title:  params.PRTitle,
		Body:   params.PRBody,
		Actor:  params.Actor,
	}

	results := h.syncer.CommentPreviewURL(ctx, pr, params.PreviewURL)

	type keyOutcome struct {
		TaskKey string `json:"task_key"`
		Outcome string `json:"outcome"`
		Error   string `json:"error,omitempty"`
	}
	outcomes := make([]keyOutcome, 0, len(results))
	failed := false
	for _, r := range results {
		o := keyOutcome{TaskKey: r.TaskKey, Outcome: string(r.Outcome)}
		if r.Err != nil {
			o.Error = r.Err.Error()
			failed = true
		}
		outcomes = append(outcomes, o)
	}

	payload, err := json.Marshal(map[string]any{
		"pr_number": params.PRNumber,
		"results":   outcomes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}

	log.Printf("[MCP Tasksync Server] Finished comment_preview_url for PR #%d (%d task(s))", params.PRNumber, len(results))

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
		IsError: failed,
	}, nil, nil
}
