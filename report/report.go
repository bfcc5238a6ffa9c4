// Package report aggregates findings into deterministic CLI output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/btree"

	"github.com/Nelson-Lamounier/cdk-monitoring/rules"
	"github.com/Nelson-Lamounier/cdk-monitoring/scanner"
)

// Report holds findings ordered by kind, logical ID, then rule ID.
type Report struct {
	tree *btree.BTreeG[scanner.Finding]
}

func findingLess(a, b scanner.Finding) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.LogicalID != b.LogicalID {
		return a.LogicalID < b.LogicalID
	}
	return a.RuleID < b.RuleID
}

// New creates an empty report.
func New() *Report {
	return &Report{tree: btree.NewG(16, findingLess)}
}

// Add inserts findings. Duplicate (kind, logical ID, rule ID) keys keep
// the last verdict.
func (r *Report) Add(findings ...scanner.Finding) {
	for _, f := range findings {
		r.tree.ReplaceOrInsert(f)
	}
}

// Findings returns all findings in sorted order.
func (r *Report) Findings() []scanner.Finding {
	out := make([]scanner.Finding, 0, r.tree.Len())
	r.tree.Ascend(func(f scanner.Finding) bool {
		out = append(out, f)
		return true
	})
	return out
}

// Len reports the number of findings held.
func (r *Report) Len() int {
	return r.tree.Len()
}

// Counts tallies findings per verdict.
func (r *Report) Counts() map[rules.Verdict]int {
	counts := map[rules.Verdict]int{}
	r.tree.Ascend(func(f scanner.Finding) bool {
		counts[f.Verdict]++
		return true
	})
	return counts
}

// ExitCode maps the report onto a process exit code per the fail_on
// policy: "failed" gates on FAILED, "unknown" also gates on UNKNOWN,
// "never" always succeeds.
func (r *Report) ExitCode(failOn string) int {
	counts := r.Counts()
	switch failOn {
	case "never":
		return 0
	case "unknown":
		if counts[rules.VerdictUnknown] > 0 || counts[rules.VerdictFailed] > 0 {
			return 1
		}
	default:
		if counts[rules.VerdictFailed] > 0 {
			return 1
		}
	}
	return 0
}

// WriteTable renders findings as an aligned text table with a summary
// line.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "RESOURCE\tKIND\tRULE\tCATEGORY\tVERDICT")
	r.tree.Ascend(func(f scanner.Finding) bool {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			f.LogicalID, f.Kind, f.RuleID, f.Category, f.Verdict)
		return true
	})
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	counts := r.Counts()
	_, err := fmt.Fprintf(w, "\n%d checks: %d passed, %d failed, %d unknown, %d skipped\n",
		r.tree.Len(),
		counts[rules.VerdictPassed],
		counts[rules.VerdictFailed],
		counts[rules.VerdictUnknown],
		counts[rules.VerdictSkipped],
	)
	return err
}

type jsonReport struct {
	Findings []scanner.Finding     `json:"findings"`
	Summary  map[rules.Verdict]int `json:"summary"`
}

// WriteJSON renders findings as a single JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Findings: r.Findings(),
		Summary:  r.Counts(),
	})
}
