package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/awlabs/tasksync/internal/jira"
	prsync "github.com/awlabs/tasksync/internal/sync"
)

func main() {
	requiredEnv := []string{"JIRA_BASE_URL", "JIRA_USER", "JIRA_API_TOKEN"}
	for _, env := range requiredEnv {
		if os.Getenv(env) == "" {
			log.Fatalf("[MCP Tasksync Server] Missing required environment variable: %s", env)
		}
	}

	log.Println("[MCP Tasksync Server] Starting Tasksync MCP Server v1.0.0")
	log.Printf("[MCP Tasksync Server] Jira base URL: %s", os.Getenv("JIRA_BASE_URL"))

	location := time.UTC
	if tz := os.Getenv("REPORT_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("[MCP Tasksync Server] Invalid REPORT_TIMEZONE: %v", err)
		}
		location = loc
	}

	client := jira.NewHTTPClient(os.Getenv("JIRA_BASE_URL"), os.Getenv("JIRA_USER"), os.Getenv("JIRA_API_TOKEN"))
	handler := NewHandler(prsync.New(client, location))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tasksync-server",
		Version: "v1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_task_keys",
		Description: "Extract tracker task keys (e.g. AW-12) from free text, deduplicated in order of first appearance",
	}, handler.HandleExtractTaskKeys)
	log.Println("[MCP Tasksync Server] Registered tool: extract_task_keys")

	mcp.AddTool(server, &mcp.Tool{
		Name:        "comment_preview_url",
		Description: "Create or update the preview URL comment on every tracker task a pull request references",
	}, handler.HandleCommentPreviewURL)
	log.Println("[MCP Tasksync Server] Registered tool: comment_preview_url")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[MCP Tasksync Server] Received shutdown signal")
		cancel()
	}()

	log.Println("[MCP Tasksync Server] Starting on stdio transport...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("[MCP Tasksync Server] Server error: %v", err)
	}
	log.Println("[MCP Tasksync Server] Server stopped gracefully")
}
