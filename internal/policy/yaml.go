package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a Rule from any of its three surface forms: a bare
// scalar naming a rule ("deploy-lead"), a bare sequence (shorthand for an
// {or: [...]} group), or a mapping with an "and" or "or" key.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var ref string
		if err := node.Decode(&ref); err != nil {
			return fmt.Errorf("decoding rule reference: %w", err)
		}
		r.Ref = ref
		return nil

	case yaml.SequenceNode:
		var children []Rule
		if err := node.Decode(&children); err != nil {
			return fmt.Errorf("decoding bare rule list: %w", err)
		}
		if children == nil {
			children = []Rule{}
		}
		r.Or = children
		return nil

	case yaml.MappingNode:
		var wrapper struct {
			And []Rule `yaml:"and"`
			Or  []Rule `yaml:"or"`
		}
		if err := node.Decode(&wrapper); err != nil {
			return fmt.Errorf("decoding rule group: %w", err)
		}
		switch {
		case wrapper.And != nil:
			r.And = wrapper.And
		case wrapper.Or != nil:
			r.Or = wrapper.Or
		default:
			return fmt.Errorf("rule mapping at line %d must have an 'and' or 'or' key", node.Line)
		}
		return nil

	default:
		return fmt.Errorf("rule at line %d must be a name, a list, or an and/or mapping", node.Line)
	}
}
