package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/awlabs/tasksync/internal/config"
	"github.com/awlabs/tasksync/internal/dispatcher"
	"github.com/awlabs/tasksync/internal/github"
	"github.com/awlabs/tasksync/internal/jira"
	"github.com/awlabs/tasksync/internal/runstore"
	prsync "github.com/awlabs/tasksync/internal/sync"
	"github.com/awlabs/tasksync/internal/web"
	"github.com/awlabs/tasksync/internal/webhook"
)

var (
	loadDotEnv         = godotenv.Load
	newRunStore        = runstore.NewStore
	newDispatcher      = dispatcher.New
	newWebHandler      = web.NewHandler
	defaultListenServe = http.ListenAndServe
)

func main() {
	if err := run(context.Background(), defaultListenServe); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting tasksync server...")
	log.Printf("Port: %d", cfg.Port)
	log.Printf("GitHub App ID: %s", cfg.GitHubAppID)
	log.Printf("Jira base URL: %s", cfg.JiraBaseURL)
	log.Printf("Report timezone: %s", cfg.ReportTimezone)
	log.Printf("Dispatcher workers: %d, queue size: %d, max attempts: %d", cfg.DispatcherWorkers, cfg.DispatcherQueueSize, cfg.DispatcherMaxAttempts)

	runs := newRunStore()

	appAuth := &github.AppAuth{
		AppID:      cfg.GitHubAppID,
		PrivateKey: cfg.GitHubPrivateKey,
	}
	prs := github.NewFetcher(appAuth)

	jiraClient := jira.NewHTTPClient(cfg.JiraBaseURL, cfg.JiraUser, cfg.JiraAPIToken)
	syncer := prsync.New(jiraClient, cfg.Location())
	exec := prsync.NewExecutor(syncer, prs, runs)

	dispatcherConfig := dispatcher.Config{
		Workers:           cfg.DispatcherWorkers,
		QueueSize:         cfg.DispatcherQueueSize,
		MaxAttempts:       cfg.DispatcherMaxAttempts,
		InitialBackoff:    cfg.DispatcherRetryInitial,
		BackoffMultiplier: cfg.DispatcherBackoffMultiplier,
		MaxBackoff:        cfg.DispatcherRetryMax,
	}
	taskDispatcher := newDispatcher(exec, dispatcherConfig)
	defer taskDispatcher.Shutdown(ctx)

	handler := webhook.NewHandler(cfg.GitHubWebhookSecret, taskDispatcher)
	webHandler := newWebHandler(runs)

	r := mux.NewRouter()

	r.HandleFunc("/webhook", handler.Handle).Methods("POST")
	webHandler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"service":"tasksync","status":"running"}`)
	}).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Webhook endpoint: http://localhost%s/webhook", addr)
	log.Printf("Health check: http://localhost%s/health", addr)
	log.Printf("Runs API: http://localhost%s/runs", addr)

	if err := serve(addr, r); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}
