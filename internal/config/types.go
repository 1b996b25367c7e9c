// Package config loads and validates the YAML policy document consumed by
// the deployment approval engine.
package config

import "github.com/deployops/approval-gate/internal/policy"

// CurrentVersion is the only schema version this loader accepts.
const CurrentVersion = 1

// PolicyConfig is the on-disk shape of the policy document. Everything
// under Policy/ApprovalRules maps directly onto policy.Config; the
// remaining fields are host-side wiring never seen by internal/policy.
type PolicyConfig struct {
	Version int `yaml:"version"`
	Policy  struct {
		Approval []policy.Rule `yaml:"approval"`
	} `yaml:"policy"`
	ApprovalRules map[string]policy.NamedApprovalRule `yaml:"approval_rules"`
	Tagging       *TaggingConfig                      `yaml:"tagging,omitempty"`
	Jira          *JiraConfig                          `yaml:"jira,omitempty"`
}

// TaggingConfig controls post-approval semantic-version tag creation.
type TaggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Prefix        string `yaml:"prefix,omitempty"`
	AutoIncrement string `yaml:"auto_increment,omitempty"` // major, minor, or patch
	StartVersion  string `yaml:"start_version,omitempty"`
}

// IsEnabled reports whether tagging should run, tolerating a nil receiver.
func (t *TaggingConfig) IsEnabled() bool {
	return t != nil && t.Enabled
}

// JiraConfig controls which commit-message issue keys get their fix
// version marked once a deployment is approved.
type JiraConfig struct {
	ProjectKeys []string `yaml:"project_keys,omitempty"`
}

// ToPolicyConfig extracts the subset of the document the policy engine
// actually evaluates, discarding the ambient tagging/jira wiring.
func (c *PolicyConfig) ToPolicyConfig() *policy.Config {
	return &policy.Config{
		Approval:      c.Policy.Approval,
		ApprovalRules: c.ApprovalRules,
	}
}
