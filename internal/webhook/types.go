package webhook

// GitHub webhook event payloads, reduced to the fields this service reads.

type PullRequestEvent struct {
	Action      string      `json:"action"`
	Number      int         `json:"number"`
	PullRequest PullRequest `json:"pull_request"`
	Repository  Repository  `json:"repository"`
	Sender      User        `json:"sender"`
}

type DeploymentStatusEvent struct {
	DeploymentStatus DeploymentStatus `json:"deployment_status"`
	Deployment       Deployment       `json:"deployment"`
	Repository       Repository       `json:"repository"`
	Sender           User             `json:"sender"`
}

type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
	Draft  bool   `json:"draft"`
	Merged bool   `json:"merged"`
	Base   struct {
		Ref string `json:"ref"`
	} `json:"base"`
	User User `json:"user"`
}

type DeploymentStatus struct {
	State          string `json:"state"`
	EnvironmentURL string `json:"environment_url"`
	TargetURL      string `json:"target_url"`
}

type Deployment struct {
	Environment string `json:"environment"`
}

type Repository struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Name          string `json:"name"`
	Owner         User   `json:"owner"`
}

type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}
