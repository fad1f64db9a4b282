// Package webhook turns GitHub deliveries into tracker-sync tasks. It only
// classifies events and enqueues work; the sync engine itself never sees an
// HTTP request.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// Handler handles GitHub webhook events.
type Handler struct {
	webhookSecret string
	dispatcher    TaskDispatcher
	deduper       *deliveryDeduper
}

// NewHandler creates a new webhook handler.
func NewHandler(webhookSecret string, dispatcher TaskDispatcher) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		dispatcher:    dispatcher,
		deduper:       newDeliveryDeduper(12 * time.Hour),
	}
}

// Handle verifies and classifies one delivery, then enqueues the derived
// sync task. Events that carry no sync work are acknowledged with 200.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[Webhook] Error reading payload: %v", err)
		http.Error(w, "Error reading payload", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if err := ValidateSignatureHeader(signature); err != nil {
		log.Printf("[Webhook] Invalid signature header: %v", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}
	if !VerifySignature(payload, signature, h.webhookSecret) {
		log.Printf("[Webhook] Signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	if deliveryID := r.Header.Get("X-GitHub-Delivery"); deliveryID != "" {
		if !h.deduper.markIfNew(deliveryID) {
			log.Printf("[Webhook] Duplicate delivery %s, skipping", deliveryID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Duplicate delivery")
			return
		}
	}

	switch eventType := r.Header.Get("X-GitHub-Event"); eventType {
	case "ping":
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "pong")
	case "pull_request":
		h.handlePullRequest(w, payload)
	case "deployment_status":
		h.handleDeploymentStatus(w, payload)
	default:
		log.Printf("[Webhook] Ignoring event type %q", eventType)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Event ignored")
	}
}

func (h *Handler) handlePullRequest(w http.ResponseWriter, payload []byte) {
	var event PullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("[Webhook] Failed to parse pull_request event: %v", err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	var kind TaskKind
	switch {
	case event.Action == "closed" && event.PullRequest.Merged:
		kind = KindPostMerge
	case event.Action == "ready_for_review":
		kind = KindTransitionToReview
	case event.Action == "opened" && !event.PullRequest.Draft:
		kind = KindTransitionToReview
	default:
		log.Printf("[Webhook] Ignoring pull_request action %q for PR #%d", event.Action, event.Number)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Action ignored")
		return
	}

	h.enqueue(w, &Task{
		ID:     generateTaskID(event.Repository.FullName, event.PullRequest.Number, kind),
		Kind:   kind,
		Repo:   event.Repository.FullName,
		Number: event.PullRequest.Number,
		Actor:  event.Sender.Login,
	})
}

func (h *Handler) handleDeploymentStatus(w http.ResponseWriter, payload []byte) {
	var event DeploymentStatusEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("[Webhook] Failed to parse deployment_status event: %v", err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if event.DeploymentStatus.State != "success" {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Deployment state ignored")
		return
	}

	previewURL := event.DeploymentStatus.EnvironmentURL
	if previewURL == "" {
		previewURL = event.DeploymentStatus.TargetURL
	}

	number, ok := prNumberFromEnvironment(event.Deployment.Environment)
	if !ok {
		log.Printf("[Webhook] No PR number in environment %q, skipping", event.Deployment.Environment)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Environment ignored")
		return
	}

	h.enqueue(w, &Task{
		ID:         generateTaskID(event.Repository.FullName, number, KindCommentPreviewURL),
		Kind:       KindCommentPreviewURL,
		Repo:       event.Repository.FullName,
		Number:     number,
		PreviewURL: previewURL,
		Actor:      event.Sender.Login,
	})
}

func (h *Handler) enqueue(w http.ResponseWriter, task *Task) {
	if err := h.dispatcher.Enqueue(task); err != nil {
		log.Printf("[Webhook] Failed to enqueue task %s: %v", task.ID, err)
		if errors.Is(err, ErrQueueFull) {
			http.Error(w, "Queue full, retry later", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Failed to enqueue task", http.StatusInternalServerError)
		return
	}

	log.Printf("[Webhook] Enqueued %s task %s for %s#%d", task.Kind, task.ID, task.Repo, task.Number)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, `{"task_id":%q}`, task.ID)
}

// environmentPR matches preview environment names that encode a PR number,
// e.g. "preview-pr-123" or "pr/123".
var environmentPR = regexp.MustCompile(`(?i)\bpr[-/](\d+)\b`)

func prNumberFromEnvironment(environment string) (int, bool) {
	match := environmentPR.FindStringSubmatch(environment)
	if match == nil {
		return 0, false
	}
	number, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return number, true
}

func generateTaskID(repo string, number int, kind TaskKind) string {
	return fmt.Sprintf("%s#%d-%s-%d", repo, number, kind, time.Now().UnixNano())
}
