package action

import (
	"os"
	"path/filepath"
	"testing"
)

// createTestEventFile creates a temporary event file with the given JSON content.
func createTestEventFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	eventFile := filepath.Join(tmpDir, "event.json")
	if err := os.WriteFile(eventFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test event file: %v", err)
	}
	return eventFile
}

// setEventPath sets GITHUB_EVENT_PATH and returns a cleanup function.
func setEventPath(t *testing.T, path string) {
	t.Helper()
	oldPath := os.Getenv("GITHUB_EVENT_PATH")
	os.Setenv("GITHUB_EVENT_PATH", path)
	t.Cleanup(func() {
		if oldPath == "" {
			os.Unsetenv("GITHUB_EVENT_PATH")
		} else {
			os.Setenv("GITHUB_EVENT_PATH", oldPath)
		}
	})
}

const deploymentReviewEventJSON = `{
	"action": "requested",
	"environment": "production",
	"deployment_callback_url": "https://api.github.com/repos/owner/repo/actions/runs/123/deployment_protection_rule",
	"workflow_run": {
		"id": 123456,
		"head_sha": "abc123",
		"head_branch": "main"
	},
	"pull_requests": [{"number": 7}, {"number": 9}],
	"repository": {
		"full_name": "owner/repo",
		"owner": {"login": "owner"},
		"name": "repo"
	},
	"sender": {"login": "alice"}
}`

const pullRequestReviewEventJSON = `{
	"action": "submitted",
	"review": {
		"id": 555,
		"state": "APPROVED",
		"body": "lgtm",
		"commit_id": "abc123",
		"user": {"login": "bob"}
	},
	"pull_request": {
		"number": 7,
		"head": {"sha": "abc123"}
	},
	"repository": {
		"full_name": "owner/repo",
		"owner": {"login": "owner"},
		"name": "repo"
	},
	"sender": {"login": "bob"}
}`

func TestParseGitHubEvent_DeploymentReview(t *testing.T) {
	eventFile := createTestEventFile(t, deploymentReviewEventJSON)
	setEventPath(t, eventFile)

	event, err := ParseGitHubEvent()
	if err != nil {
		t.Fatalf("ParseGitHubEvent failed: %v", err)
	}

	if event.Action != "requested" {
		t.Errorf("expected action %q, got %q", "requested", event.Action)
	}
	if event.Environment != "production" {
		t.Errorf("expected environment %q, got %q", "production", event.Environment)
	}
	if event.WorkflowRun == nil || event.WorkflowRun.ID != 123456 {
		t.Fatalf("expected workflow run 123456, got %+v", event.WorkflowRun)
	}
	if len(event.PullRequests) != 2 {
		t.Errorf("expected 2 pull requests, got %d", len(event.PullRequests))
	}
}

func TestGetRunIDFromEvent(t *testing.T) {
	eventFile := createTestEventFile(t, deploymentReviewEventJSON)
	setEventPath(t, eventFile)

	runID, err := GetRunIDFromEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runID != 123456 {
		t.Errorf("expected run id 123456, got %d", runID)
	}
}

func TestGetRunIDFromEvent_MissingWorkflowRun(t *testing.T) {
	eventFile := createTestEventFile(t, pullRequestReviewEventJSON)
	setEventPath(t, eventFile)

	if _, err := GetRunIDFromEvent(); err == nil {
		t.Fatal("expected an error when the event has no workflow run")
	}
}

func TestGetEnvironmentFromEvent(t *testing.T) {
	eventFile := createTestEventFile(t, deploymentReviewEventJSON)
	setEventPath(t, eventFile)

	env, err := GetEnvironmentFromEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env != "production" {
		t.Errorf("expected environment %q, got %q", "production", env)
	}
}

func TestGetEnvironmentFromEvent_Missing(t *testing.T) {
	eventFile := createTestEventFile(t, pullRequestReviewEventJSON)
	setEventPath(t, eventFile)

	if _, err := GetEnvironmentFromEvent(); err == nil {
		t.Fatal("expected an error when the event has no environment")
	}
}

func TestGetPullRequestNumbersFromEvent_DeploymentReview(t *testing.T) {
	eventFile := createTestEventFile(t, deploymentReviewEventJSON)
	setEventPath(t, eventFile)

	numbers, err := GetPullRequestNumbersFromEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(numbers) != 2 || numbers[0] != 7 || numbers[1] != 9 {
		t.Errorf("expected [7 9], got %v", numbers)
	}
}

func TestGetPullRequestNumbersFromEvent_SingleReview(t *testing.T) {
	eventFile := createTestEventFile(t, pullRequestReviewEventJSON)
	setEventPath(t, eventFile)

	numbers, err := GetPullRequestNumbersFromEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != 7 {
		t.Errorf("expected [7], got %v", numbers)
	}
}

func TestGetEventAction(t *testing.T) {
	eventFile := createTestEventFile(t, pullRequestReviewEventJSON)
	setEventPath(t, eventFile)

	action, err := GetEventAction()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != "submitted" {
		t.Errorf("expected action %q, got %q", "submitted", action)
	}
}

func TestParseGitHubEvent_MissingEventPath(t *testing.T) {
	setEventPath(t, "")
	os.Unsetenv("GITHUB_EVENT_PATH")

	if _, err := ParseGitHubEvent(); err == nil {
		t.Fatal("expected an error when GITHUB_EVENT_PATH is unset")
	}
}
