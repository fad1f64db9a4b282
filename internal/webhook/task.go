package webhook

// TaskKind selects which sync flow a task runs.
type TaskKind string

const (
	KindTransitionToReview TaskKind = "transition_to_review"
	KindPostMerge          TaskKind = "post_merge"
	KindCommentPreviewURL  TaskKind = "comment_preview_url"
)

// Task is one unit of tracker-sync work derived from a webhook delivery.
type Task struct {
	ID         string
	Kind       TaskKind
	Repo       string // owner/name
	Number     int    // pull request number
	PreviewURL string // set for KindCommentPreviewURL only
	Actor      string // webhook sender, used in audit paragraphs
	Attempt    int    // managed by the dispatcher
}

// TaskDispatcher enqueues tasks for asynchronous execution.
type TaskDispatcher interface {
	Enqueue(task *Task) error
}
