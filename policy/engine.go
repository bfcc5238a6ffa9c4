// Package policy evaluates user-supplied Rego checks alongside the
// built-in catalog.
//
// A policy module lives under the cdkcheck namespace and emits a
// verdict per evaluated resource:
//
//	package cdkcheck.tagging
//
//	import rego.v1
//
//	rule_id := "CUSTOM_TAG_1"
//	rule_name := "Resources must carry an Owner tag"
//	category := "general_security"
//
//	verdict := "FAILED" if {
//	    input.kind == "AWS::EC2::Volume"
//	    not input.properties.Tags
//	} else := "PASSED"
package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Nelson-Lamounier/cdk-monitoring/rules"
	"github.com/Nelson-Lamounier/cdk-monitoring/scanner"
	"github.com/Nelson-Lamounier/cdk-monitoring/telemetry"
	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// Engine holds compiled Rego policies keyed by module name.
type Engine struct {
	logger  *telemetry.Logger
	tracer  trace.Tracer
	queries map[string]rego.PreparedEvalQuery
}

// Input is the document each policy sees as input.
type Input struct {
	Stack               string `json:"stack,omitempty"`
	LogicalID           string `json:"logical_id"`
	Kind                string `json:"kind"`
	Properties          any    `json:"properties"`
	DeletionPolicy      string `json:"deletion_policy"`
	UpdateReplacePolicy string `json:"update_replace_policy"`
}

// NewEngine creates an empty policy engine.
func NewEngine(logger *telemetry.Logger) *Engine {
	return &Engine{
		logger:  logger,
		tracer:  otel.Tracer("policy-engine"),
		queries: make(map[string]rego.PreparedEvalQuery),
	}
}

// Len reports the number of loaded policies.
func (e *Engine) Len() int {
	return len(e.queries)
}

// LoadPolicy compiles one Rego module and registers it under name.
func (e *Engine) LoadPolicy(ctx context.Context, name, code string) error {
	ctx, span := e.tracer.Start(ctx, "policy_engine.load_policy",
		trace.WithAttributes(attribute.String("policy.name", name)))
	defer span.End()

	query := rego.New(
		rego.Query("data.cdkcheck"),
		rego.Module(name, code),
	)

	prepared, err := query.PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("compile policy %s: %w", name, err)
	}

	e.queries[name] = prepared

	if e.logger != nil {
		e.logger.WithContext(ctx).Info().
			Str("policy_name", name).
			Msg("policy loaded")
	}

	return nil
}

// LoadDir compiles every *.rego file under dir. A missing directory is
// an error; an empty one is not.
func (e *Engine) LoadDir(ctx context.Context, dir string) error {
	ctx, span := e.tracer.Start(ctx, "policy_engine.load_dir",
		trace.WithAttributes(attribute.String("policy.dir", dir)))
	defer span.End()

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("policy dir: %w", err)
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".rego") {
			return nil
		}

		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("read policy file %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), ".rego")
		return e.LoadPolicy(ctx, name, string(content))
	})
}

// Evaluate runs every loaded policy against one resource and converts
// the emitted verdicts to findings.
func (e *Engine) Evaluate(ctx context.Context, stackName string, r types.ResourceDeclaration) ([]scanner.Finding, error) {
	ctx, span := e.tracer.Start(ctx, "policy_engine.evaluate",
		trace.WithAttributes(
			attribute.String("resource.logical_id", r.LogicalID),
			attribute.String("resource.kind", r.Kind)))
	defer span.End()

	input := Input{
		Stack:               stackName,
		LogicalID:           r.LogicalID,
		Kind:                r.Kind,
		Properties:          r.Properties.Interface(),
		DeletionPolicy:      string(r.DeletionPolicy),
		UpdateReplacePolicy: string(r.UpdateReplacePolicy),
	}

	var findings []scanner.Finding
	for name, query := range e.queries {
		results, err := query.Eval(ctx, rego.EvalInput(input))
		if err != nil {
			return nil, fmt.Errorf("evaluate policy %s: %w", name, err)
		}
		findings = append(findings, e.collect(name, stackName, r, results)...)
	}

	return findings, nil
}

// collect walks the data.cdkcheck document produced by one policy and
// turns each sub-package that emitted a verdict into a finding.
func (e *Engine) collect(policyName, stackName string, r types.ResourceDeclaration, results rego.ResultSet) []scanner.Finding {
	var findings []scanner.Finding
	for _, res := range results {
		for _, expr := range res.Expressions {
			doc, ok := expr.Value.(map[string]interface{})
			if !ok {
				continue
			}
			for sub, v := range doc {
				module, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				f, ok := findingFromModule(policyName+"/"+sub, stackName, r, module)
				if !ok {
					continue
				}
				findings = append(findings, f)
			}
		}
	}
	return findings
}

func findingFromModule(name, stackName string, r types.ResourceDeclaration, module map[string]interface{}) (scanner.Finding, bool) {
	rawVerdict, ok := module["verdict"].(string)
	if !ok {
		return scanner.Finding{}, false
	}

	f := scanner.Finding{
		Stack:     stackName,
		LogicalID: r.LogicalID,
		Kind:      r.Kind,
		RuleID:    name,
		RuleName:  name,
		Category:  rules.CategoryGeneral,
		Verdict:   normalizeVerdict(rawVerdict),
	}
	if id, ok := module["rule_id"].(string); ok && id != "" {
		f.RuleID = id
	}
	if n, ok := module["rule_name"].(string); ok && n != "" {
		f.RuleName = n
	}
	if c, ok := module["category"].(string); ok && c != "" {
		f.Category = rules.Category(c)
	}
	return f, true
}

func normalizeVerdict(s string) rules.Verdict {
	switch rules.Verdict(strings.ToUpper(s)) {
	case rules.VerdictPassed:
		return rules.VerdictPassed
	case rules.VerdictFailed:
		return rules.VerdictFailed
	case rules.VerdictSkipped:
		return rules.VerdictSkipped
	default:
		return rules.VerdictUnknown
	}
}
