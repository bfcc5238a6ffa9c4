package rules

// Verdict is the categorical outcome of applying one rule to one
// resource declaration.
type Verdict string

const (
	// VerdictPassed means the resource satisfies the rule, or the rule
	// does not apply to the resource's current shape.
	VerdictPassed Verdict = "PASSED"
	// VerdictFailed means a definite violation.
	VerdictFailed Verdict = "FAILED"
	// VerdictUnknown means the evaluation could not be completed, e.g.
	// a field that would not coerce to a number. Never conflated with
	// FAILED: "can't tell" is not "known bad".
	VerdictUnknown Verdict = "UNKNOWN"
	// VerdictSkipped is reserved for host tooling and external policy
	// bridges; the built-in catalog folds inapplicable shapes into
	// PASSED for compatibility with the published rule surface.
	VerdictSkipped Verdict = "SKIPPED"
)
