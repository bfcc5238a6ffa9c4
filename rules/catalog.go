package rules

// Catalog returns the full ordered list of built-in rules. The slice is
// rebuilt on each call; rules themselves are stateless, so callers may
// share or copy the result freely. Registration is explicit — no init
// side effects, no reflection-based discovery.
func Catalog() []Rule {
	var out []Rule
	out = append(out, networkRules()...)
	out = append(out, loggingRules()...)
	out = append(out, volumeRules()...)
	out = append(out, computeRules()...)
	out = append(out, vpcRules()...)
	out = append(out, lambdaRules()...)
	out = append(out, iamRules()...)
	out = append(out, kmsRules()...)
	out = append(out, autoscalingRules()...)
	out = append(out, messagingRules()...)
	return out
}
