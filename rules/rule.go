// Package rules holds the verdict model, the rule descriptor, and the
// built-in catalog of security and compliance checks evaluated against
// synthesized stack resources.
package rules

import "github.com/Nelson-Lamounier/cdk-monitoring/types"

// Category groups rules for reporting and suppression tooling.
type Category string

const (
	CategoryNetworking Category = "networking"
	CategoryEncryption Category = "encryption"
	CategoryIAM        Category = "iam"
	CategoryLogging    Category = "logging"
	CategoryGeneral    Category = "general_security"
	CategoryBackup     Category = "backup_and_recovery"
	// CategoryReminder marks rules that fail unconditionally as
	// build-time reminders; hosts may auto-suppress them per resource.
	CategoryReminder Category = "reminder"
)

// Rule describes one check. The ID, Name, Category, AppliesTo tuple is
// the contract suppression files and dashboards depend on; it must not
// change once published. Evaluate is pure: no shared state, no I/O, no
// panics across the rule boundary.
type Rule struct {
	ID        string
	Name      string
	Category  Category
	AppliesTo []string
	Evaluate  func(types.ResourceDeclaration) Verdict
}

// Applies reports whether the rule covers the given resource kind.
func (r Rule) Applies(kind string) bool {
	for _, k := range r.AppliesTo {
		if k == kind {
			return true
		}
	}
	return false
}
