package policy

import "context"

// Logger is the host-supplied logging sink (spec §6).
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// NoopLogger discards all messages.
type NoopLogger struct{}

func (NoopLogger) Info(string)  {}
func (NoopLogger) Warn(string)  {}
func (NoopLogger) Error(string) {}

// Engine is the top-level policy orchestrator (C7). It is constructed
// once per evaluation from a Config, the host's roster callables, and
// a logger; it holds no state across calls to Evaluate.
type Engine struct {
	config     *Config
	membership *membershipCache
	logger     Logger
	pctx       *Context
}

// NewEngine constructs an engine from a policy config and the host's
// membership callables and logger.
func NewEngine(config *Config, listOrgMembers OrgMembersFunc, listTeamMembers TeamMembersFunc, logger Logger) *Engine {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &Engine{
		config:     config,
		membership: newMembershipCache(listOrgMembers, listTeamMembers),
		logger:     logger,
	}
}

// Evaluate implements C7: looks up the top-level rule list and
// combines it with OR. An empty or absent top-level list, or one
// whose rules all evaluate to skipped, denies the deployment.
func (e *Engine) Evaluate(ctx context.Context, pctx *Context) (bool, error) {
	if len(e.config.Approval) == 0 {
		e.logger.Warn("policy has no top-level approval rules; denying")
		return false, nil
	}

	// Each top-level Evaluate call gets its own membership cache so
	// concurrent calls to the same *Engine don't share roster state
	// across unrelated evaluations.
	eval := &Engine{
		config:     e.config,
		membership: newMembershipCache(e.membership.listOrgMembers, e.membership.listTeamMembers),
		logger:     e.logger,
		pctx:       pctx,
	}

	verdict, err := eval.evaluateGroup(ctx, e.config.Approval, map[string]bool{}, false)
	if err != nil {
		return false, err
	}

	switch verdict {
	case VerdictPass:
		return true, nil
	case VerdictFail:
		eval.logger.Warn("deployment policy was not satisfied")
		return false, nil
	default: // skipped
		eval.logger.Warn("deployment policy produced no applicable rules; denying")
		return false, nil
	}
}
