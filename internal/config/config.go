package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deployops/approval-gate/internal/policy"
)

// Load reads and parses a policy document from a local path.
func Load(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// FileFetcher retrieves a file's contents from an external repository,
// satisfied by (*github.Client).GetFileContentsFromRepo.
type FileFetcher func(ctx context.Context, repoFullName, path string) ([]byte, error)

// LoadWithFallback reads the policy document from configRepo (in
// "owner/repo" form) via fetch when configRepo is non-empty, falling back
// to the local path otherwise. This lets an organization centralize its
// policy document in a dedicated ".github" repository.
func LoadWithFallback(ctx context.Context, fetch FileFetcher, configRepo, path string) (*PolicyConfig, error) {
	if configRepo == "" {
		return Load(path)
	}

	data, err := fetch(ctx, configRepo, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config from %s: %w", configRepo, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML policy document bytes and validates the result.
func Parse(data []byte) (*PolicyConfig, error) {
	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks schema version, named-rule uniqueness and
// self-consistency, and that every rule reference resolves, catching
// configuration mistakes at load time rather than at evaluation time.
func (c *PolicyConfig) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	for name, rule := range c.ApprovalRules {
		if rule.Name != "" && rule.Name != name {
			return fmt.Errorf("approval rule %q has mismatched name field %q", name, rule.Name)
		}
	}

	for i, rule := range c.Policy.Approval {
		if err := validateRuleRefs(rule, c.ApprovalRules); err != nil {
			return fmt.Errorf("policy.approval[%d]: %w", i, err)
		}
	}

	if c.Tagging.IsEnabled() {
		switch c.Tagging.AutoIncrement {
		case "", "major", "minor", "patch":
		default:
			return fmt.Errorf("tagging.auto_increment must be major, minor, or patch, got %q", c.Tagging.AutoIncrement)
		}
	}

	return nil
}

// validateRuleRefs recursively confirms every named reference in a rule
// tree resolves against the known approval_rules set.
func validateRuleRefs(rule policy.Rule, rules map[string]policy.NamedApprovalRule) error {
	switch rule.Kind() {
	case policy.RuleKindRef:
		if _, ok := rules[rule.Ref]; !ok {
			return fmt.Errorf("unknown approval rule %q", rule.Ref)
		}
		return nil
	case policy.RuleKindAnd:
		for i, child := range rule.And {
			if err := validateRuleRefs(child, rules); err != nil {
				return fmt.Errorf("and[%d]: %w", i, err)
			}
		}
		return nil
	case policy.RuleKindOr:
		for i, child := range rule.Or {
			if err := validateRuleRefs(child, rules); err != nil {
				return fmt.Errorf("or[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("rule has neither a reference nor an and/or group")
	}
}
