// Package intrinsics flattens property trees that embed CloudFormation
// function nodes into the literal string fragments a rule can inspect.
package intrinsics

import (
	"strings"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// Function tags that are transparent to string extraction: the wrapped
// argument is what the author wrote, so that is what gets inspected.
// Base64 content is deliberately not decoded.
const (
	fnBase64 = "Fn::Base64"
	fnSub    = "Fn::Sub"
	fnJoin   = "Fn::Join"
)

// Resolve flattens a property subtree into its literal string fragments,
// in authoring order. Unknown or malformed shapes are skipped, never an
// error: resolution is total over any finite tree.
func Resolve(node types.Value) []string {
	var out []string
	resolveInto(node, &out)
	return out
}

// Script joins the resolved fragments with newlines into a single
// script-like string for pattern matching over user data.
func Script(node types.Value) string {
	return strings.Join(Resolve(node), "\n")
}

func resolveInto(node types.Value, out *[]string) {
	switch node.Kind() {
	case types.KindString:
		*out = append(*out, node.Text())
	case types.KindList:
		for _, item := range node.List() {
			resolveInto(item, out)
		}
	case types.KindMap:
		for _, key := range node.Keys() {
			value := node.Get(key)
			switch key {
			case fnBase64, fnSub:
				resolveInto(value, out)
			case fnJoin:
				resolveJoin(value, out)
			default:
				// Ordinary nested properties or an unrecognized
				// function: inspect every value, ignore the keys.
				resolveInto(value, out)
			}
		}
	}
}

// resolveJoin handles the [separator, items] argument shape. Only the
// items are inspected; the separator is deploy-time glue, not authored
// content. A single non-list item is treated as a one-element list.
func resolveJoin(arg types.Value, out *[]string) {
	parts := arg.List()
	if len(parts) != 2 {
		return
	}
	items := parts[1].List()
	if items == nil {
		items = []types.Value{parts[1]}
	}
	for _, item := range items {
		resolveInto(item, out)
	}
}
