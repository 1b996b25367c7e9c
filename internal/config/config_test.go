package config

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MinimalConfig(t *testing.T) {
	doc := `
version: 1
policy:
  approval:
    - lead-review
approval_rules:
  lead-review:
    requires:
      count: 1
      teams: ["acme/leads"]
    methods:
      github_review: true
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	assert.Len(t, cfg.Policy.Approval, 1)
	assert.Len(t, cfg.ApprovalRules, 1)
}

func TestParse_FullConfig(t *testing.T) {
	doc := `
version: 1
policy:
  approval:
    - and:
        - lead-review
        - or:
            - security-review
            - qa-review
approval_rules:
  lead-review:
    requires:
      count: 1
      teams: ["acme/leads"]
    methods:
      github_review: true
  security-review:
    if:
      environment:
        matches: ["prod"]
    requires:
      count: 1
      users: ["alice"]
    methods:
      github_review: true
  qa-review:
    requires:
      count: 1
      users: ["bob"]
    methods:
      github_review: true
tagging:
  enabled: true
  prefix: "v"
  auto_increment: minor
jira:
  project_keys: ["PROJ"]
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.True(t, cfg.Tagging.IsEnabled())
	assert.Equal(t, []string{"PROJ"}, cfg.Jira.ProjectKeys)

	pc := cfg.ToPolicyConfig()
	assert.Len(t, pc.Approval, 1)
	assert.Len(t, pc.ApprovalRules, 3)
}

func TestParse_UnsupportedVersion(t *testing.T) {
	doc := `
version: 2
policy:
  approval: []
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "unsupported config version")
}

func TestParse_UnknownRuleReference(t *testing.T) {
	doc := `
version: 1
policy:
  approval:
    - does-not-exist
approval_rules: {}
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "unknown approval rule")
}

func TestParse_UnknownReferenceInsideGroup(t *testing.T) {
	doc := `
version: 1
policy:
  approval:
    - and:
        - lead-review
        - ghost-rule
approval_rules:
  lead-review:
    requires:
      count: 1
      users: ["alice"]
    methods:
      github_review: true
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "unknown approval rule \"ghost-rule\"")
}

func TestParse_MismatchedRuleName(t *testing.T) {
	doc := `
version: 1
policy:
  approval: []
approval_rules:
  lead-review:
    name: something-else
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "mismatched name field")
}

func TestParse_EmptyTopLevelIsValid(t *testing.T) {
	doc := `
version: 1
policy:
  approval: []
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, cfg.Policy.Approval)
}

func TestParse_InvalidAutoIncrement(t *testing.T) {
	doc := `
version: 1
policy:
  approval: []
tagging:
  enabled: true
  auto_increment: sideways
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "auto_increment must be major, minor, or patch")
}

func TestLoadWithFallback_UsesLocalPathWhenNoConfigRepo(t *testing.T) {
	path := t.TempDir() + "/policy.yml"
	doc := []byte("version: 1\npolicy:\n  approval: []\n")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	cfg, err := LoadWithFallback(context.Background(), nil, "", path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
}

func TestLoadWithFallback_FetchesFromConfigRepo(t *testing.T) {
	doc := []byte("version: 1\npolicy:\n  approval: []\n")
	fetch := func(ctx context.Context, repoFullName, path string) ([]byte, error) {
		assert.Equal(t, "acme/.github", repoFullName)
		assert.Equal(t, "policy.yml", path)
		return doc, nil
	}

	cfg, err := LoadWithFallback(context.Background(), fetch, "acme/.github", "policy.yml")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
}
