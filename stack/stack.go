// Package stack turns an already-synthesized CloudFormation template
// (JSON or YAML) into the resource declarations the rule engine
// consumes. It performs deserialization only: no CDK source parsing, no
// transforms, no file discovery.
package stack

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// Stack is one template's worth of resource declarations.
type Stack struct {
	Name      string
	Resources []types.ResourceDeclaration
}

// Load reads and parses a template file.
func Load(path string) (*Stack, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- template path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	s.Name = path
	return s, nil
}

// Parse decodes template bytes into a Stack.
func Parse(data []byte) (*Stack, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return nil, fmt.Errorf("template has no Resources section")
	}

	root, err := valueFromNode(node.Content[0])
	if err != nil {
		return nil, err
	}

	resources := root.Get("Resources")
	if !resources.IsMap() {
		return nil, fmt.Errorf("template has no Resources section")
	}

	s := &Stack{}
	for _, logicalID := range resources.Keys() {
		entry := resources.Get(logicalID)
		kind := entry.Get("Type").Text()
		if kind == "" {
			continue
		}
		decl := types.NewResourceDeclaration(logicalID, kind, entry.Get("Properties"))
		if p := lifecyclePolicy(entry.Get("DeletionPolicy")); p != "" {
			decl.DeletionPolicy = p
		}
		if p := lifecyclePolicy(entry.Get("UpdateReplacePolicy")); p != "" {
			decl.UpdateReplacePolicy = p
		}
		s.Resources = append(s.Resources, decl)
	}
	return s, nil
}

// ParseValue decodes a property subtree on its own, expanding short
// intrinsic tags. Used by fixtures and tests.
func ParseValue(data []byte) (types.Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return types.Absent, fmt.Errorf("decode value: %w", err)
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return types.Absent, nil
	}
	return valueFromNode(node.Content[0])
}

func lifecyclePolicy(v types.Value) types.LifecyclePolicy {
	switch types.LifecyclePolicy(v.Text()) {
	case types.PolicyRetain:
		return types.PolicyRetain
	case types.PolicySnapshot:
		return types.PolicySnapshot
	case types.PolicyRetainExceptOnCreate:
		return types.PolicyRetainExceptOnCreate
	case types.PolicyDelete:
		return types.PolicyDelete
	default:
		return ""
	}
}

// valueFromNode converts a yaml.Node, expanding CloudFormation short
// tags (!Ref, !Sub, !Join, ...) into their long Fn:: form at every
// depth so the intrinsic resolver sees one shape. Synthesized CDK
// output is plain JSON, but hand-written templates use the short form.
func valueFromNode(node *yaml.Node) (types.Value, error) {
	if node == nil {
		return types.Absent, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return types.Absent, nil
		}
		return valueFromNode(node.Content[0])
	case yaml.AliasNode:
		return valueFromNode(node.Alias)
	case yaml.ScalarNode:
		if tag, ok := intrinsicShortTag(node); ok {
			return types.Map(types.Field(tag, types.String(node.Value))), nil
		}
		return types.FromYAMLNode(node)
	case yaml.SequenceNode:
		items := make([]types.Value, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := valueFromNode(child)
			if err != nil {
				return types.Absent, err
			}
			items = append(items, v)
		}
		return wrapShortTag(node, types.List(items...)), nil
	case yaml.MappingNode:
		pairs := make([]types.Pair, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := valueFromNode(node.Content[i+1])
			if err != nil {
				return types.Absent, err
			}
			pairs = append(pairs, types.Field(node.Content[i].Value, v))
		}
		return wrapShortTag(node, types.Map(pairs...)), nil
	default:
		return types.Absent, nil
	}
}

func wrapShortTag(node *yaml.Node, v types.Value) types.Value {
	if tag, ok := intrinsicShortTag(node); ok {
		return types.Map(types.Field(tag, v))
	}
	return v
}

// intrinsicShortTag maps "!Name" to its long function key. "!Ref" is
// the one short tag that does not get an Fn:: prefix.
func intrinsicShortTag(node *yaml.Node) (string, bool) {
	if node == nil || !strings.HasPrefix(node.Tag, "!") || strings.HasPrefix(node.Tag, "!!") {
		return "", false
	}
	name := strings.TrimPrefix(node.Tag, "!")
	if name == "Ref" {
		return "Ref", true
	}
	if name == "GetAtt" {
		return "Fn::GetAtt", true
	}
	return "Fn::" + name, true
}
