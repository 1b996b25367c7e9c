package action

import (
	"encoding/json"
	"fmt"
	"os"
)

// GitHubEvent represents the common structure of the webhook payloads this
// action reacts to: deployment_protection_rule (environment approval
// gates) and pull_request_review (review submissions that may satisfy a
// pending gate once re-evaluated).
type GitHubEvent struct {
	Action                string `json:"action"`
	Environment           string `json:"environment"`
	DeploymentCallbackURL string `json:"deployment_callback_url"`
	WorkflowRun           *struct {
		ID         int64  `json:"id"`
		HeadSHA    string `json:"head_sha"`
		HeadBranch string `json:"head_branch"`
	} `json:"workflow_run"`
	PullRequests []struct {
		Number int `json:"number"`
	} `json:"pull_requests"`
	Review *struct {
		ID       int64  `json:"id"`
		State    string `json:"state"`
		Body     string `json:"body"`
		CommitID string `json:"commit_id"`
		User     struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"review"`
	PullRequest *struct {
		Number int    `json:"number"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
		Owner    struct {
			Login string `json:"login"`
		} `json:"owner"`
		Name string `json:"name"`
	} `json:"repository"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// ParseGitHubEvent reads and parses the GitHub event from GITHUB_EVENT_PATH.
func ParseGitHubEvent() (*GitHubEvent, error) {
	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return nil, fmt.Errorf("GITHUB_EVENT_PATH environment variable not set")
	}

	data, err := os.ReadFile(eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}

	var event GitHubEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}

	return &event, nil
}

// GetRunIDFromEvent extracts the workflow run ID from a
// deployment_protection_rule event.
func GetRunIDFromEvent() (int64, error) {
	event, err := ParseGitHubEvent()
	if err != nil {
		return 0, err
	}

	if event.WorkflowRun == nil {
		return 0, fmt.Errorf("event does not contain workflow run information")
	}

	return event.WorkflowRun.ID, nil
}

// GetEnvironmentFromEvent extracts the target environment name from a
// deployment_protection_rule event.
func GetEnvironmentFromEvent() (string, error) {
	event, err := ParseGitHubEvent()
	if err != nil {
		return "", err
	}

	if event.Environment == "" {
		return "", fmt.Errorf("event does not contain an environment")
	}

	return event.Environment, nil
}

// GetPullRequestNumbersFromEvent returns every pull request number
// associated with the triggering workflow run or, for a pull_request_review
// event, the single reviewed pull request.
func GetPullRequestNumbersFromEvent() ([]int, error) {
	event, err := ParseGitHubEvent()
	if err != nil {
		return nil, err
	}

	if event.PullRequest != nil {
		return []int{event.PullRequest.Number}, nil
	}

	numbers := make([]int, 0, len(event.PullRequests))
	for _, pr := range event.PullRequests {
		numbers = append(numbers, pr.Number)
	}
	return numbers, nil
}

// GetEventAction returns the action type from the GitHub event (e.g.,
// "requested", "submitted").
func GetEventAction() (string, error) {
	event, err := ParseGitHubEvent()
	if err != nil {
		return "", err
	}

	return event.Action, nil
}
