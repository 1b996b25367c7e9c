package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/deployops/approval-gate/internal/action"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	actionType := ""
	if len(os.Args) > 1 {
		actionType = os.Args[1]
	}
	if actionType == "" {
		actionType = action.GetInput("action")
	}
	if actionType == "" {
		return fmt.Errorf("action input is required (evaluate or tag)")
	}

	configPath := action.GetInput("config_path")
	if configPath == "" {
		configPath = action.GetInput("config-path")
	}
	if configPath == "" {
		configPath = ".github/approvals.yml"
	}

	configRepo := action.GetInput("config_repo")
	if configRepo == "" {
		configRepo = action.GetInput("config-repo")
	}

	handler, err := action.NewHandlerWithOptions(ctx, action.HandlerOptions{
		ConfigPath: configPath,
		ConfigRepo: configRepo,
	})
	if err != nil {
		return err
	}

	switch strings.ToLower(actionType) {
	case "evaluate":
		return handleEvaluate(ctx, handler)
	case "tag":
		return handleTag(ctx, handler)
	default:
		return fmt.Errorf("unknown action: %s (expected evaluate or tag)", actionType)
	}
}

// handleEvaluate runs the policy engine against the pending deployment
// named by the "run_id"/"environment" inputs, falling back to the
// triggering deployment_protection_rule webhook event when the inputs
// are absent.
func handleEvaluate(ctx context.Context, handler *action.Handler) error {
	runID, err := action.GetInputInt("run_id")
	if err != nil {
		return fmt.Errorf("invalid run_id: %w", err)
	}
	if runID == 0 {
		id, err := action.GetRunIDFromEvent()
		if err != nil {
			return fmt.Errorf("run_id input is required for evaluate action: %w", err)
		}
		runID = int(id)
	}

	environment := action.GetInput("environment")
	if environment == "" {
		if env, err := action.GetEnvironmentFromEvent(); err == nil {
			environment = env
		}
	}

	output, err := handler.Evaluate(ctx, action.EvaluateInput{
		RunID:       int64(runID),
		Environment: environment,
	})
	if err != nil {
		return err
	}

	if output.Allowed {
		fmt.Printf("Deployment %s to %s approved by policy\n", output.CommitSHA, output.Environment)
	} else {
		fmt.Printf("Deployment %s to %s denied by policy\n", output.CommitSHA, output.Environment)
	}

	return action.SetOutputs(map[string]string{
		"allowed":     fmt.Sprintf("%t", output.Allowed),
		"environment": output.Environment,
		"commit_sha":  output.CommitSHA,
	})
}

// handleTag runs the standalone post-approval semver tagging verb,
// used when tagging is driven by a separate workflow step rather than
// inline after Evaluate.
func handleTag(ctx context.Context, handler *action.Handler) error {
	output, err := handler.Tag(ctx)
	if err != nil {
		return err
	}

	if output.Created {
		fmt.Printf("Created tag: %s\n", output.Tag)
	} else {
		fmt.Println("Tagging is disabled or no tag was created")
	}

	return action.SetOutputs(map[string]string{
		"tag":     output.Tag,
		"created": fmt.Sprintf("%t", output.Created),
	})
}
