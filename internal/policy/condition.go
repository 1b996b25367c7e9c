package policy

import "context"

// evaluateCondition implements C3: every predicate set on a
// RuleCondition must hold; an unset condition (or an entirely nil
// one) is vacuously true.
func (e *Engine) evaluateCondition(ctx context.Context, cond *RuleCondition, pctx *Context) (bool, error) {
	if cond == nil {
		return true, nil
	}

	if cond.Environment != nil {
		if !evaluateEnvironment(cond.Environment, pctx) {
			return false, nil
		}
	}

	if cond.HasValidSignaturesBy != nil {
		ok, err := e.evaluateValidSignatures(ctx, *cond.HasValidSignaturesBy, pctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	if cond.WasAuthoredBy != nil {
		ok, err := e.evaluateAuthoredBy(ctx, *cond.WasAuthoredBy, pctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func evaluateEnvironment(cond *EnvironmentCondition, pctx *Context) bool {
	if pctx.Environment == nil {
		return false
	}
	name := pctx.Environment.Name

	if len(cond.Matches) > 0 && !containsString(cond.Matches, name) {
		return false
	}
	if len(cond.NotMatches) > 0 && containsString(cond.NotMatches, name) {
		return false
	}
	return true
}

// evaluateValidSignatures requires every commit to carry a
// provider-verified signature from an authorized committer.
func (e *Engine) evaluateValidSignatures(ctx context.Context, set IdentitySet, pctx *Context) (bool, error) {
	for _, c := range pctx.Commits {
		if c.Verification == nil || !c.Verification.Verified {
			return false, nil
		}
		committer := ""
		if c.Committer != nil {
			committer = c.Committer.Login
		}
		ok, err := e.membership.isUserInAny(ctx, committer, set)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evaluateAuthoredBy requires every commit's author to match the
// identity set. An empty commit list never satisfies this condition.
func (e *Engine) evaluateAuthoredBy(ctx context.Context, set IdentitySet, pctx *Context) (bool, error) {
	if len(pctx.Commits) == 0 {
		return false, nil
	}
	for _, c := range pctx.Commits {
		ok, err := e.membership.isUserInAny(ctx, c.AuthorLogin(), set)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
