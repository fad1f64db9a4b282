// Package sync drives tracker bookkeeping for pull-request lifecycle events:
// it extracts task keys from PR text, keeps exactly one marker-tagged status
// comment per task in step with the PR, and applies workflow transitions.
// Every task key is handled independently; one key's failure never aborts the
// rest of the batch.
package sync

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/awlabs/tasksync/internal/adf"
	"github.com/awlabs/tasksync/internal/jira"
	"github.com/awlabs/tasksync/internal/taskkey"
)

// Marker is embedded verbatim in generated preview comments. It is the only
// way a later run recognizes a comment as ours: the tracker's comment API has
// no authored-by-system field, so ownership is a content convention.
const Marker = "<!-- This comment was generated automatically -->"

// Outcome classifies what happened for one task key.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result records the outcome for one task key in one sync run. Results are
// surfaced and logged, never persisted.
type Result struct {
	TaskKey string
	Outcome Outcome
	Reason  string // set for skips and soft notes
	Err     error  // set for failures
}

// PRContext carries the pull-request fields the sync engine reads.
type PRContext struct {
	Number  int
	Title   string
	Body    string
	BaseRef string
	Draft   bool
	State   string
	Actor   string
}

// TaskKeys extracts the task keys referenced by the PR. The literal "#N" PR
// self-reference is stripped from the title first so an autolinked PR number
// never shadows a key.
func (pr PRContext) TaskKeys() []string {
	cleanedTitle := strings.ReplaceAll(pr.Title, fmt.Sprintf("#%d", pr.Number), "")
	return taskkey.Extract(cleanedTitle + "\n" + pr.Body)
}

// Syncer synchronizes tracker tasks with PR events through a jira.Client.
type Syncer struct {
	client   jira.Client
	location *time.Location
	now      func() time.Time
}

// New creates a Syncer. location is the reporting time zone used in audit
// paragraphs; nil falls back to UTC.
func New(client jira.Client, location *time.Location) *Syncer {
	if location == nil {
		location = time.UTC
	}
	return &Syncer{client: client, location: location, now: time.Now}
}

// PreviewComment builds the marker-tagged preview comment body.
func PreviewComment(previewURL string) *adf.Comment {
	return adf.NewComment().
		HeadingWith(2, func(g adf.Generator) []adf.Inline {
			return []adf.Inline{g.Link("Preview URL", previewURL)}
		}).
		Paragraph(Marker)
}

// CommentPreviewURL upserts the preview comment on every task the PR
// references: create when no tracked comment exists, otherwise update the
// first tracked comment found, appending an audit paragraph.
func (s *Syncer) CommentPreviewURL(ctx context.Context, pr PRContext, previewURL string) []Result {
	if !strings.Contains(previewURL, "https://") {
		previewURL = "https://" + previewURL
	}
	template := PreviewComment(previewURL).Build()

	keys := pr.TaskKeys()
	log.Printf("[Sync] Found %d task(s) in PR #%d. %s", len(keys), pr.Number, keyList(keys))

	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		results = append(results, s.upsertPreviewComment(ctx, key, pr, template))
	}
	return results
}

func (s *Syncer) upsertPreviewComment(ctx context.Context, key string, pr PRContext, template adf.Node) Result {
	comments, err := s.client.GetComments(ctx, key)
	if err != nil {
		log.Printf("[Sync] Failed to fetch comments for task %s: %v", key, err)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: err}
	}

	existing := findTrackedComment(comments)
	if existing == nil {
		status, err := s.client.AddComment(ctx, key, template)
		if err != nil {
			log.Printf("[Sync] Failed to add a comment for task %s: %v", key, err)
			return Result{TaskKey: key, Outcome: OutcomeFailed, Err: err}
		}
		if status != http.StatusCreated {
			log.Printf("[Sync] Failed to add a comment for task %s! Response: %d", key, status)
			return Result{TaskKey: key, Outcome: OutcomeFailed, Err: fmt.Errorf("add comment: unexpected status %d", status)}
		}
		log.Printf("[Sync] Added a comment for task %s", key)
		return Result{TaskKey: key, Outcome: OutcomeCreated}
	}

	log.Printf("[Sync] Found an existing comment for task %s, updating", key)
	body := adf.NewComment(template.Content...).
		Paragraph(s.auditLine(pr.Actor)).
		Build()

	status, err := s.client.UpdateComment(ctx, key, existing.ID, body)
	if err != nil {
		log.Printf("[Sync] Failed to update the comment for task %s: %v", key, err)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: err}
	}
	if status != http.StatusOK {
		log.Printf("[Sync] Failed to update the comment for task %s! Response: %d", key, status)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: fmt.Errorf("update comment: unexpected status %d", status)}
	}
	log.Printf("[Sync] Updated the comment for task %s", key)
	return Result{TaskKey: key, Outcome: OutcomeUpdated}
}

// auditLine renders the audit paragraph appended to updated preview comments.
func (s *Syncer) auditLine(actor string) string {
	stamp := s.now().In(s.location).Format("1/2/2006, 3:04:05 PM")
	return fmt.Sprintf("Updated the preview URL for this task. Last updated by %s at %s", actor, stamp)
}

// PostMerge transitions referenced tasks to Done and leaves a merge note.
// Only merges into main count; the transition and the comment are independent
// operations, a failure of one does not stop the other.
func (s *Syncer) PostMerge(ctx context.Context, pr PRContext) []Result {
	if !strings.Contains(pr.BaseRef, "main") {
		log.Printf("[Sync] PR #%d targets %q, skipping post-merge sync", pr.Number, pr.BaseRef)
		return nil
	}

	keys := pr.TaskKeys()
	log.Printf("[Sync] Transitioning tasks in PR #%d to %q. Found %d task(s). %s",
		pr.Number, jira.TransitionDone.StatusName(), len(keys), keyList(keys))

	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		results = append(results, s.finishTask(ctx, key, pr))
	}
	return results
}

func (s *Syncer) finishTask(ctx context.Context, key string, pr PRContext) Result {
	result := Result{TaskKey: key, Outcome: OutcomeCreated}

	status, err := s.client.Transition(ctx, key, jira.TransitionDone)
	switch {
	case err != nil:
		log.Printf("[Sync] Failed to transition task %s to Done: %v", key, err)
		result.Reason = "transition failed"
	case status != http.StatusNoContent:
		log.Printf("[Sync] Failed to transition task %s to Done! Response: %d", key, status)
		result.Reason = fmt.Sprintf("transition returned status %d", status)
	default:
		log.Printf("[Sync] Transitioned task %s to Done", key)
	}

	comment := adf.NewComment().
		Heading(2, fmt.Sprintf("PR %d has been merged!", pr.Number)).
		Build()

	commentStatus, err := s.client.AddComment(ctx, key, comment)
	if err != nil {
		log.Printf("[Sync] Failed to add a comment to task %s: %v", key, err)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: err, Reason: result.Reason}
	}
	if commentStatus != http.StatusCreated {
		log.Printf("[Sync] Failed to add a comment to task %s! Response: %d", key, commentStatus)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: fmt.Errorf("add comment: unexpected status %d", commentStatus), Reason: result.Reason}
	}

	log.Printf("[Sync] Added a comment to task %s", key)
	return result
}

// TransitionToReview moves referenced tasks to In Review when a PR leaves
// draft. PRs into main and drafts are skipped outright. A task already In
// Review, or one that already carries a tracked comment, is skipped entirely:
// neither the transition nor the comment is issued again.
func (s *Syncer) TransitionToReview(ctx context.Context, pr PRContext) []Result {
	if strings.Contains(pr.BaseRef, "main") || pr.Draft {
		log.Printf("[Sync] Skipping PR #%d (base %q, draft %v)", pr.Number, pr.BaseRef, pr.Draft)
		return nil
	}

	keys := pr.TaskKeys()
	log.Printf("[Sync] Checking tasks in PR #%d for transition to %q. Found %d task(s). %s",
		pr.Number, jira.TransitionInReview.StatusName(), len(keys), keyList(keys))

	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		results = append(results, s.reviewTask(ctx, key, pr))
	}
	return results
}

func (s *Syncer) reviewTask(ctx context.Context, key string, pr PRContext) Result {
	current, err := s.client.GetStatus(ctx, key)
	if err != nil {
		log.Printf("[Sync] Failed to get status for task %s: %v", key, err)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: err}
	}

	target := jira.TransitionInReview.StatusName()
	if strings.EqualFold(current, target) {
		log.Printf("[Sync] Task %s is already in %q status, skipping", key, target)
		return Result{TaskKey: key, Outcome: OutcomeSkipped, Reason: "already in review"}
	}

	comments, err := s.client.GetComments(ctx, key)
	if err != nil {
		log.Printf("[Sync] Failed to fetch comments for task %s: %v", key, err)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: err}
	}
	if findTrackedComment(comments) != nil {
		log.Printf("[Sync] Found an existing comment for task %s, skipping", key)
		return Result{TaskKey: key, Outcome: OutcomeSkipped, Reason: "existing tracked comment"}
	}

	result := Result{TaskKey: key, Outcome: OutcomeCreated}

	status, err := s.client.Transition(ctx, key, jira.TransitionInReview)
	switch {
	case err != nil:
		log.Printf("[Sync] Failed to transition task %s to %q: %v", key, target, err)
		result.Reason = "transition failed"
	case status != http.StatusNoContent:
		log.Printf("[Sync] Failed to transition task %s to %q! Response: %d", key, target, status)
		result.Reason = fmt.Sprintf("transition returned status %d", status)
	default:
		log.Printf("[Sync] Transitioned task %s to %q", key, target)
	}

	comment := adf.NewComment().
		Paragraph(fmt.Sprintf("PR %d is being reviewed!", pr.Number)).
		Build()

	commentStatus, err := s.client.AddComment(ctx, key, comment)
	if err != nil {
		log.Printf("[Sync] Failed to add a comment to task %s: %v", key, err)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: err, Reason: result.Reason}
	}
	if commentStatus != http.StatusCreated {
		log.Printf("[Sync] Failed to add a comment to task %s! Response: %d", key, commentStatus)
		return Result{TaskKey: key, Outcome: OutcomeFailed, Err: fmt.Errorf("add comment: unexpected status %d", commentStatus), Reason: result.Reason}
	}

	log.Printf("[Sync] Added a comment to task %s", key)
	return result
}

// findTrackedComment returns the first comment whose document contains a
// paragraph with a text node mentioning the marker string. Later tracked
// comments, if any, are deliberately left alone. Malformed documents simply
// never match.
func findTrackedComment(comments []jira.Comment) *jira.Comment {
	for i := range comments {
		for _, block := range comments[i].Body.Content {
			if block.Type != "paragraph" {
				continue
			}
			for _, inline := range block.Content {
				if strings.Contains(inline.Text, Marker) {
					return &comments[i]
				}
			}
		}
	}
	return nil
}

func keyList(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return "Tasks: " + strings.Join(keys, ", ")
}
