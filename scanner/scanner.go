// Package scanner evaluates the rule catalog against stack resources.
package scanner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Nelson-Lamounier/cdk-monitoring/rules"
	"github.com/Nelson-Lamounier/cdk-monitoring/stack"
	"github.com/Nelson-Lamounier/cdk-monitoring/telemetry"
	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// Finding is one rule outcome for one resource.
type Finding struct {
	Stack     string         `json:"stack,omitempty"`
	LogicalID string         `json:"logical_id"`
	Kind      string         `json:"kind"`
	RuleID    string         `json:"rule_id"`
	RuleName  string         `json:"rule_name"`
	Category  rules.Category `json:"category"`
	Verdict   rules.Verdict  `json:"verdict"`
}

// Scanner runs every applicable rule over every resource in a stack.
type Scanner struct {
	catalog  []rules.Rule
	workers  int
	logger   *telemetry.Logger
	provider *telemetry.Provider
}

type job struct {
	rule     rules.Rule
	resource types.ResourceDeclaration
}

// New creates a scanner over the given catalog. Workers below 1 are
// clamped to 1. The provider may be nil when telemetry is disabled.
func New(catalog []rules.Rule, workers int, logger *telemetry.Logger, provider *telemetry.Provider) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		catalog:  catalog,
		workers:  workers,
		logger:   logger,
		provider: provider,
	}
}

// Scan evaluates the catalog against every resource in the stack.
// Evaluation order across findings is not defined; callers sort.
func (s *Scanner) Scan(ctx context.Context, st *stack.Stack) []Finding {
	start := time.Now()

	if s.provider != nil {
		var span trace.Span
		ctx, span = s.provider.StartSpan(ctx, "scan_stack")
		defer span.End()
	}

	jobs := make(chan job)
	results := make(chan Finding)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.work(ctx, st.Name, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		for _, r := range st.Resources {
			for _, rule := range s.catalog {
				if !rule.Applies(r.Kind) {
					continue
				}
				select {
				case jobs <- job{rule: rule, resource: r}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var findings []Finding
	for f := range results {
		findings = append(findings, f)
	}

	if s.provider != nil {
		s.provider.RecordScanDuration(ctx, st.Name, time.Since(start))
		s.provider.RecordTemplate(ctx, st.Name)
	}
	if s.logger != nil {
		s.logger.WithContext(ctx).Info().
			Str("stack", st.Name).
			Int("resources", len(st.Resources)).
			Int("findings", len(findings)).
			Dur("duration", time.Since(start)).
			Msg("scan complete")
	}

	return findings
}

func (s *Scanner) work(ctx context.Context, stackName string, jobs <-chan job, results chan<- Finding) {
	for j := range jobs {
		verdict := j.rule.Evaluate(j.resource)

		if s.provider != nil {
			s.provider.RecordVerdict(ctx, j.rule.ID, string(j.rule.Category), string(verdict))
		}
		if s.logger != nil {
			s.logger.LogVerdict(ctx, j.rule.ID, j.resource.LogicalID, string(verdict))
		}

		f := Finding{
			Stack:     stackName,
			LogicalID: j.resource.LogicalID,
			Kind:      j.resource.Kind,
			RuleID:    j.rule.ID,
			RuleName:  j.rule.Name,
			Category:  j.rule.Category,
			Verdict:   verdict,
		}

		select {
		case results <- f:
		case <-ctx.Done():
			return
		}
	}
}
