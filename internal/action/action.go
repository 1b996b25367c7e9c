package action

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deployops/approval-gate/internal/config"
	ghclient "github.com/deployops/approval-gate/internal/github"
	jiraclient "github.com/deployops/approval-gate/internal/jira"
	"github.com/deployops/approval-gate/internal/policy"
	"github.com/deployops/approval-gate/internal/semver"
)

// Handler orchestrates a single policy evaluation (or post-approval
// tagging run) for one deployment_protection_rule webhook delivery.
type Handler struct {
	client *ghclient.Client
	cfg    *config.PolicyConfig
	jira   *jiraclient.Client
	logger policy.Logger
}

// HandlerOptions configures how the handler loads configuration.
type HandlerOptions struct {
	ConfigPath string
	ConfigRepo string // Optional: owner/repo for external config (e.g., "myorg/.github")
}

// NewHandler creates a new action handler using only a local config path.
func NewHandler(ctx context.Context, configPath string) (*Handler, error) {
	return NewHandlerWithOptions(ctx, HandlerOptions{ConfigPath: configPath})
}

// NewHandlerWithOptions creates a new action handler, wiring a GitHub
// client, the policy document, and an optional Jira client read from
// action inputs.
func NewHandlerWithOptions(ctx context.Context, opts HandlerOptions) (*Handler, error) {
	client, err := ghclient.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	fetch := config.FileFetcher(func(ctx context.Context, repoFullName, path string) ([]byte, error) {
		return client.GetFileContentsFromRepo(ctx, repoFullName, path)
	})

	cfg, err := config.LoadWithFallback(ctx, fetch, opts.ConfigRepo, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	h := &Handler{
		client: client,
		cfg:    cfg,
		logger: &stderrLogger{},
	}

	if baseURL := os.Getenv("INPUT_JIRA_BASE_URL"); baseURL != "" {
		email := os.Getenv("INPUT_JIRA_EMAIL")
		apiToken := os.Getenv("INPUT_JIRA_API_TOKEN")

		var jc *jiraclient.Client
		var err error
		if email != "" && apiToken != "" {
			jc, err = jiraclient.NewClient(jiraclient.ClientConfig{BaseURL: baseURL, Email: email, APIToken: apiToken})
		} else {
			// No credentials: fall back to links-only mode so the action can
			// still reference issues in its output without calling the API.
			jc, err = jiraclient.NewLinksOnlyClient(baseURL)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create Jira client: %w", err)
		}
		h.jira = jc
	}

	return h, nil
}

// stderrLogger writes policy.Logger messages to stderr with severity
// prefixes, matching the teacher's choice never to pull in a structured
// logging dependency.
type stderrLogger struct{}

func (l *stderrLogger) Info(msg string)  { fmt.Fprintf(os.Stderr, "[info] %s\n", msg) }
func (l *stderrLogger) Warn(msg string)  { fmt.Fprintf(os.Stderr, "[warn] %s\n", msg) }
func (l *stderrLogger) Error(msg string) { fmt.Fprintf(os.Stderr, "[error] %s\n", msg) }

// EvaluateInput contains inputs for the evaluate action.
type EvaluateInput struct {
	RunID       int64
	Environment string // required when multiple deployments are pending for RunID
}

// EvaluateOutput reports the policy engine's decision.
type EvaluateOutput struct {
	Allowed     bool
	Environment string
	CommitSHA   string
}

// Evaluate builds a policy.Context for the pending deployment identified
// by input, runs the configured policy against it, and approves or
// rejects the environment deployment accordingly.
func (h *Handler) Evaluate(ctx context.Context, input EvaluateInput) (*EvaluateOutput, error) {
	pending, err := h.client.GetPendingDeployments(ctx, input.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending deployments for run %d: %w", input.RunID, err)
	}

	target, err := selectPendingDeployment(pending, input.Environment)
	if err != nil {
		return nil, err
	}

	run, err := h.client.GetWorkflowRun(ctx, input.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow run %d: %w", input.RunID, err)
	}

	shas := []string{run.HeadSHA}
	seen := map[string]bool{run.HeadSHA: true}

	var reviews []policy.Review
	for _, prNumber := range run.PullRequestNumbers {
		prShas, err := h.client.ListPullRequestCommitSHAs(ctx, prNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for pull request #%d: %w", prNumber, err)
		}
		for _, sha := range prShas {
			if !seen[sha] {
				seen[sha] = true
				shas = append(shas, sha)
			}
		}

		prReviews, err := h.client.ListReviews(ctx, prNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for pull request #%d: %w", prNumber, err)
		}
		reviews = append(reviews, prReviews...)
	}

	commits, err := h.client.GetCommitsForSHAs(ctx, shas)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commits for %s: %w", run.HeadSHA, err)
	}

	pctx := &policy.Context{
		Commits:     commits,
		Reviews:     reviews,
		Environment: &policy.Environment{Name: target.EnvironmentName},
		Deployment: &policy.DeploymentRef{
			Environment: target.EnvironmentName,
			Event:       "deployment_protection_rule",
			CommitSHA:   run.HeadSHA,
		},
	}

	engine := policy.NewEngine(h.cfg.ToPolicyConfig(), h.client.ListOrganizationMembers, h.client.ListTeamMembers, h.logger)

	allowed, err := engine.Evaluate(ctx, pctx)
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}

	description := fmt.Sprintf("%s deployment %s by policy", titleCaser.String(target.EnvironmentName), approvalVerb(allowed))

	if allowed {
		if err := h.client.ApproveEnvironmentDeployment(ctx, ghclient.ApproveEnvironmentDeploymentOptions{
			RunID:   input.RunID,
			EnvIDs:  []int64{target.EnvironmentID},
			Comment: description,
		}); err != nil {
			return nil, fmt.Errorf("failed to approve environment deployment: %w", err)
		}
		if err := h.afterApproval(ctx, target.EnvironmentName, commits); err != nil {
			h.logger.Error(fmt.Sprintf("post-approval actions failed: %v", err))
		}
	} else {
		if err := h.client.RejectEnvironmentDeployment(ctx, input.RunID, []int64{target.EnvironmentID}, description); err != nil {
			return nil, fmt.Errorf("failed to reject environment deployment: %w", err)
		}
	}

	return &EvaluateOutput{Allowed: allowed, Environment: target.EnvironmentName, CommitSHA: run.HeadSHA}, nil
}

var titleCaser = cases.Title(language.English)

func approvalVerb(allowed bool) string {
	if allowed {
		return "approved"
	}
	return "denied"
}

// selectPendingDeployment picks the pending deployment matching
// environment, or the sole pending deployment when environment is empty.
func selectPendingDeployment(pending []ghclient.PendingDeployment, environment string) (*ghclient.PendingDeployment, error) {
	if environment != "" {
		for i := range pending {
			if pending[i].EnvironmentName == environment {
				return &pending[i], nil
			}
		}
		return nil, fmt.Errorf("no pending deployment found for environment %q", environment)
	}

	switch len(pending) {
	case 0:
		return nil, fmt.Errorf("no pending deployments found")
	case 1:
		return &pending[0], nil
	default:
		return nil, fmt.Errorf("multiple pending deployments found; specify an environment")
	}
}

// afterApproval runs the side effects a passing policy triggers: semantic
// version tag creation and Jira fix-version release tracking.
func (h *Handler) afterApproval(ctx context.Context, environment string, commits []policy.Commit) error {
	var tagErr, jiraErr error

	if h.cfg.Tagging.IsEnabled() {
		_, _, tagErr = h.createReleaseTag(ctx)
	}

	if h.jira != nil && h.jira.CanMakeAPICalls() && h.cfg.Jira != nil && len(h.cfg.Jira.ProjectKeys) > 0 {
		jiraErr = h.markJiraIssuesReleased(ctx, commits)
	}

	if tagErr != nil {
		return tagErr
	}
	return jiraErr
}

// TagOutput reports the tag created by a standalone tag action run.
type TagOutput struct {
	Tag     string
	Created bool
}

// Tag computes and creates the next release tag, intended for the
// standalone "tag" action verb run after an evaluate has approved a
// deployment.
func (h *Handler) Tag(ctx context.Context) (*TagOutput, error) {
	if !h.cfg.Tagging.IsEnabled() {
		h.logger.Info("tagging disabled")
		return &TagOutput{}, nil
	}

	tag, created, err := h.createReleaseTag(ctx)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Tag: tag, Created: created}, nil
}

// createReleaseTag assumes the caller has already checked
// h.cfg.Tagging.IsEnabled().
func (h *Handler) createReleaseTag(ctx context.Context) (tag string, created bool, err error) {
	prefix := h.cfg.Tagging.Prefix
	if prefix == "" {
		prefix = "v"
	}

	latest, err := h.client.GetLatestTagWithPrefix(ctx, prefix)
	if err != nil {
		return "", false, fmt.Errorf("failed to get latest tag: %w", err)
	}

	current := latest
	if current == "" {
		current = h.cfg.Tagging.StartVersion
		if current == "" {
			current = prefix + "0.0.0"
		}
	}

	increment := h.cfg.Tagging.AutoIncrement
	if increment == "" {
		increment = "patch"
	}

	next, err := semver.NextVersion(current, increment)
	if err != nil {
		return "", false, fmt.Errorf("failed to compute next version from %s: %w", current, err)
	}

	tag, err = semver.FormatTag(next, prefix)
	if err != nil {
		return "", false, fmt.Errorf("failed to format tag: %w", err)
	}

	exists, err := h.client.TagExists(ctx, tag)
	if err != nil {
		return "", false, fmt.Errorf("failed to check whether tag %s exists: %w", tag, err)
	}
	if exists {
		h.logger.Warn(fmt.Sprintf("tag %s already exists; skipping creation", tag))
		return tag, false, nil
	}

	if _, err := h.client.CreateTag(ctx, ghclient.CreateTagOptions{Name: tag}); err != nil {
		return "", false, fmt.Errorf("failed to create tag %s: %w", tag, err)
	}

	return tag, true, nil
}

func (h *Handler) markJiraIssuesReleased(ctx context.Context, commits []policy.Commit) error {
	messages := make([]string, len(commits))
	for i, c := range commits {
		messages[i] = c.Message
	}

	keys := jiraclient.ExtractIssueKeysFromCommits(messages)
	if len(keys) == 0 {
		return nil
	}

	byProject := make(map[string][]string)
	for _, key := range keys {
		project := projectKeyOf(key)
		if !projectAllowed(project, h.cfg.Jira.ProjectKeys) {
			continue
		}
		byProject[project] = append(byProject[project], key)
	}

	version := time.Now().UTC().Format("2006.01.02")
	for project, issueKeys := range byProject {
		if err := h.jira.MarkVersionReleased(ctx, project, version, issueKeys); err != nil {
			return fmt.Errorf("failed to mark jira version released for %s: %w", project, err)
		}
		h.logReleasedIssues(ctx, issueKeys)
	}
	return nil
}

// logReleasedIssues announces each released issue's URL and, when the Jira
// client has API credentials, its current status emoji.
func (h *Handler) logReleasedIssues(ctx context.Context, issueKeys []string) {
	if !h.jira.CanMakeAPICalls() {
		for _, key := range issueKeys {
			h.logger.Info(fmt.Sprintf("released %s", h.jira.GetIssueURL(key)))
		}
		return
	}

	issues, err := h.jira.GetIssues(ctx, issueKeys)
	if err != nil {
		h.logger.Warn(fmt.Sprintf("failed to fetch released issue details: %v", err))
		return
	}
	for i := range issues {
		issue := &issues[i]
		h.logger.Info(fmt.Sprintf("%s%s released %s", jiraclient.GetTypeEmoji(issue), jiraclient.GetStatusEmoji(issue), h.jira.GetIssueURL(issue.Key)))
	}
}

func projectKeyOf(issueKey string) string {
	if i := strings.LastIndex(issueKey, "-"); i > 0 {
		return issueKey[:i]
	}
	return issueKey
}

func projectAllowed(project string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, p := range allowed {
		if p == project {
			return true
		}
	}
	return false
}

// SetOutput writes an output to the GitHub Actions output file.
func SetOutput(name, value string) error {
	outputFile := os.Getenv("GITHUB_OUTPUT")
	if outputFile == "" {
		fmt.Printf("::set-output name=%s::%s\n", name, value)
		return nil
	}

	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s=%s\n", name, value)
	return err
}

// SetOutputs writes multiple outputs to the GitHub Actions output file.
func SetOutputs(outputs map[string]string) error {
	for name, value := range outputs {
		if err := SetOutput(name, value); err != nil {
			return err
		}
	}
	return nil
}

// GetInput gets an action input from environment variables.
func GetInput(name string) string {
	envName := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return os.Getenv(envName)
}

// GetInputInt gets an integer input.
func GetInputInt(name string) (int, error) {
	value := GetInput(name)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// GetInputBool gets a boolean input.
func GetInputBool(name string) bool {
	value := strings.ToLower(GetInput(name))
	return value == "true" || value == "yes" || value == "1"
}

// GetInputDuration gets a duration input.
func GetInputDuration(name string) (time.Duration, error) {
	value := GetInput(name)
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
