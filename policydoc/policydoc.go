// Package policydoc walks IAM-style policy documents and answers the
// statement-level questions the IAM, KMS, and messaging rules share.
package policydoc

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// accountIDPattern matches a 12-digit account ID embedded in an
// ARN-shaped string.
var accountIDPattern = regexp.MustCompile(`:(\d{12}):`)

// Statement is one entry of a policy document's statement list.
type Statement struct {
	Effect    string
	Actions   []string
	Resources []string
	Condition types.Value
	Principal types.Value
}

// StatementsOf returns the document's statements in order. A document
// whose Statement field is a single mapping rather than a list is
// normalized to a one-element list. Non-mapping entries are dropped.
func StatementsOf(doc types.Value) []Statement {
	raw := doc.Get("Statement")
	entries := raw.List()
	if entries == nil && raw.IsMap() {
		entries = []types.Value{raw}
	}

	var out []Statement
	for _, entry := range entries {
		if !entry.IsMap() {
			continue
		}
		out = append(out, Statement{
			Effect:    entry.Get("Effect").Text(),
			Actions:   stringSet(entry.Get("Action")),
			Resources: stringSet(entry.Get("Resource")),
			Condition: entry.Get("Condition"),
			Principal: entry.Get("Principal"),
		})
	}
	return out
}

// Normalize returns the document as a mapping. String-encoded policies
// must be JSON; a decode failure is returned so the caller can route
// the verdict to UNKNOWN instead of guessing. The yaml parse after the
// validity check keeps statement key order.
func Normalize(doc types.Value) (types.Value, error) {
	if s, ok := doc.Str(); ok {
		if !json.Valid([]byte(s)) {
			return types.Absent, fmt.Errorf("decode policy document: malformed JSON")
		}
		parsed, err := types.ParseYAML([]byte(s))
		if err != nil || !parsed.IsMap() {
			return types.Absent, fmt.Errorf("decode policy document: malformed JSON")
		}
		return parsed, nil
	}
	return doc, nil
}

// HasWildcardAction reports whether an allow statement grants the exact
// wildcard token, e.g. "kms:*".
func (s Statement) HasWildcardAction(wildcard string) bool {
	if s.Effect != "Allow" {
		return false
	}
	for _, action := range s.Actions {
		if action == wildcard {
			return true
		}
	}
	return false
}

// HasHardcodedAccountID reports whether any non-wildcard resource entry
// embeds a literal 12-digit account ID.
func (s Statement) HasHardcodedAccountID() bool {
	for _, resource := range s.Resources {
		if resource == "*" {
			continue
		}
		if accountIDPattern.MatchString(resource) {
			return true
		}
	}
	return false
}

// DeniesInsecureTransport reports whether the statement denies requests
// made without TLS. Both the string "false" and boolean false condition
// values are accepted; templates serialize it either way.
func (s Statement) DeniesInsecureTransport() bool {
	if s.Effect != "Deny" {
		return false
	}
	secure := s.Condition.Get("Bool").Get("aws:SecureTransport")
	if v, ok := secure.Bool(); ok {
		return !v
	}
	return secure.Text() == "false"
}

// stringSet normalizes a single string or list of strings; non-string
// items never match anything and are dropped.
func stringSet(v types.Value) []string {
	if s, ok := v.Str(); ok {
		return []string{s}
	}
	var out []string
	for _, item := range v.List() {
		if s, ok := item.Str(); ok {
			out = append(out, s)
		}
	}
	return out
}
