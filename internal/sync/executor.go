package sync

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/awlabs/tasksync/internal/runstore"
	"github.com/awlabs/tasksync/internal/webhook"
)

// ErrUnknownTaskKind marks tasks the executor cannot run. The dispatcher
// treats it as non-retryable.
var ErrUnknownTaskKind = errors.New("unknown task kind")

// IsNonRetryable reports whether a task error should never be retried.
func IsNonRetryable(err error) bool {
	return errors.Is(err, ErrUnknownTaskKind)
}

// ContextSource resolves a pull request to the context the sync engine reads.
type ContextSource interface {
	PullRequestContext(ctx context.Context, repo string, number int) (PRContext, error)
}

// Executor runs webhook tasks against the sync engine. It implements the
// dispatcher's TaskExecutor contract.
type Executor struct {
	syncer *Syncer
	source ContextSource
	runs   *runstore.Store
}

// NewExecutor creates an executor.
func NewExecutor(syncer *Syncer, source ContextSource, runs *runstore.Store) *Executor {
	return &Executor{syncer: syncer, source: source, runs: runs}
}

// Execute resolves the PR context and runs the task's sync flow. A missing
// PR context is a run-level failure: nothing can proceed without it.
func (e *Executor) Execute(ctx context.Context, task *webhook.Task) error {
	if _, ok := e.runs.Get(task.ID); !ok {
		e.runs.Create(&runstore.Run{
			ID:     task.ID,
			Kind:   string(task.Kind),
			Repo:   task.Repo,
			Number: task.Number,
			Actor:  task.Actor,
		})
	}
	e.runs.MarkRunning(task.ID, task.Attempt)

	pr, err := e.source.PullRequestContext(ctx, task.Repo, task.Number)
	if err != nil {
		err = fmt.Errorf("fetch PR context for %s#%d: %w", task.Repo, task.Number, err)
		e.runs.Fail(task.ID, err)
		return err
	}

	// The webhook sender triggered this run; audit paragraphs name them
	// rather than the PR author.
	if task.Actor != "" {
		pr.Actor = task.Actor
	}

	var results []Result
	switch task.Kind {
	case webhook.KindTransitionToReview:
		results = e.syncer.TransitionToReview(ctx, pr)
	case webhook.KindPostMerge:
		results = e.syncer.PostMerge(ctx, pr)
	case webhook.KindCommentPreviewURL:
		results = e.syncer.CommentPreviewURL(ctx, pr, task.PreviewURL)
	default:
		err := fmt.Errorf("%w: %q", ErrUnknownTaskKind, task.Kind)
		e.runs.Fail(task.ID, err)
		return err
	}

	e.runs.Complete(task.ID, toKeyResults(results))
	log.Printf("[Sync] Run %s finished with %d result(s)", task.ID, len(results))
	return nil
}

func toKeyResults(results []Result) []runstore.KeyResult {
	recorded := make([]runstore.KeyResult, 0, len(results))
	for _, r := range results {
		kr := runstore.KeyResult{
			TaskKey: r.TaskKey,
			Outcome: string(r.Outcome),
			Reason:  r.Reason,
		}
		if r.Err != nil {
			kr.Error = r.Err.Error()
		}
		recorded = append(recorded, kr)
	}
	return recorded
}
