package rules

import (
	"testing"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// res builds a declaration from a YAML properties literal. An empty
// src yields a resource without a Properties section.
func res(t *testing.T, kind, src string) types.ResourceDeclaration {
	t.Helper()
	props := types.Absent
	if src != "" {
		props = types.MustParseYAML(src)
	}
	return types.NewResourceDeclaration("Test", kind, props)
}
