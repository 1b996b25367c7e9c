// Package policy implements the deployment approval policy engine: a pure
// evaluator that decides whether a proposed deployment satisfies a
// declarative policy of approval rules.
package policy

// IdentitySet is a union of user logins, organizations, and teams. Any
// field may be empty, contributing no membership.
type IdentitySet struct {
	Users         []string `yaml:"users,omitempty"`
	Organizations []string `yaml:"organizations,omitempty"`
	Teams         []string `yaml:"teams,omitempty"` // "org/slug"
}

// Empty returns true if the set has no members at all.
func (s IdentitySet) Empty() bool {
	return len(s.Users) == 0 && len(s.Organizations) == 0 && len(s.Teams) == 0
}

// EnvironmentCondition gates a rule by the target environment name.
type EnvironmentCondition struct {
	Matches    []string `yaml:"matches,omitempty"`
	NotMatches []string `yaml:"not_matches,omitempty"`
}

// RuleCondition is the `if` clause of a named rule. Every field that is
// set must hold for the condition to be satisfied; absent fields are
// vacuously true.
type RuleCondition struct {
	Environment          *EnvironmentCondition `yaml:"environment,omitempty"`
	HasValidSignaturesBy *IdentitySet          `yaml:"has_valid_signatures_by,omitempty"`
	WasAuthoredBy        *IdentitySet          `yaml:"was_authored_by,omitempty"`
}

// ApprovalRequirement is a threshold of distinct authorized approving
// reviews. A nil requirement, or one with Count < 1, is automatically
// satisfied (subject to the rule's `if`).
type ApprovalRequirement struct {
	Count         int      `yaml:"count"`
	Users         []string `yaml:"users,omitempty"`
	Organizations []string `yaml:"organizations,omitempty"`
	Teams         []string `yaml:"teams,omitempty"`
}

// Identities returns the requirement's authorized-reviewer set.
func (r *ApprovalRequirement) Identities() IdentitySet {
	if r == nil {
		return IdentitySet{}
	}
	return IdentitySet{Users: r.Users, Organizations: r.Organizations, Teams: r.Teams}
}

// ApprovalMethods configures how a review counts as an approval.
type ApprovalMethods struct {
	GithubReview                bool     `yaml:"github_review,omitempty"`
	GithubReviewCommentPatterns []string `yaml:"github_review_comment_patterns,omitempty"`
}

// NamedApprovalRule is a rule registered in a PolicyConfig's
// approval_rules set and referenced by name from rule expressions.
type NamedApprovalRule struct {
	Name      string               `yaml:"name"`
	If        *RuleCondition       `yaml:"if,omitempty"`
	Requires  *ApprovalRequirement `yaml:"requires,omitempty"`
	Methods   *ApprovalMethods     `yaml:"methods,omitempty"`
}

// Rule is a recursive boolean expression: a named-rule reference, an
// {and: [...]} group, an {or: [...]} group, or a bare list (treated as
// an OR group). Exactly one of the fields is populated, matched in
// Kind().
type Rule struct {
	Ref string // named reference
	And []Rule
	Or  []Rule
}

// RuleKind identifies which shape a Rule has.
type RuleKind int

const (
	RuleKindInvalid RuleKind = iota
	RuleKindRef
	RuleKindAnd
	RuleKindOr
)

// Kind reports which shape this rule has.
func (r Rule) Kind() RuleKind {
	switch {
	case r.Ref != "":
		return RuleKindRef
	case r.And != nil:
		return RuleKindAnd
	case r.Or != nil:
		return RuleKindOr
	default:
		return RuleKindInvalid
	}
}

// Config is the policy document: an ordered top-level list of rule
// expressions (combined with OR) plus the named rules they reference.
type Config struct {
	Approval      []Rule                       `yaml:"approval"`
	ApprovalRules map[string]NamedApprovalRule `yaml:"approval_rules,omitempty"`
}

// Actor identifies a GitHub user by id and login.
type Actor struct {
	ID    int64
	Login string
}

// Verification carries the provider's pre-computed signature check.
type Verification struct {
	Verified bool
	Reason   string
}

// Commit is a single commit in the proposed deployment.
type Commit struct {
	SHA          string
	Message      string
	Author       *Actor
	Committer    *Actor
	Verification *Verification
}

// AuthorLogin returns the commit author's login, or "" if unset.
func (c Commit) AuthorLogin() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Login
}

// Review is a single PR review.
type Review struct {
	ID          int64
	User        Actor
	State       string // APPROVED, CHANGES_REQUESTED, COMMENTED, ...
	Body        string
	SubmittedAt string
	CommitID    string
}

const ReviewStateApproved = "APPROVED"
const ReviewStateCommented = "COMMENTED"

// Environment describes the deployment target environment.
type Environment struct {
	Name string
}

// DeploymentRef pins the commit bound to the current deployment, used
// to exclude reviews submitted against a stale sha.
type DeploymentRef struct {
	Environment string
	Event       string
	CommitSHA   string
}

// Context is the input snapshot the engine evaluates against.
type Context struct {
	Commits     []Commit
	Reviews     []Review
	Environment *Environment
	Deployment  *DeploymentRef
}
