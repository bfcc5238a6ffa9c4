package rules

import "github.com/Nelson-Lamounier/cdk-monitoring/types"

const kindLambda = "AWS::Lambda::Function"

func lambdaRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_LAMBDA_1",
			Name:      "Ensure Lambda function has reserved concurrent executions configured",
			Category:  CategoryGeneral,
			AppliesTo: []string{kindLambda},
			Evaluate:  checkLambdaReservedConcurrency,
		},
		{
			ID:        "CKV_CUSTOM_LAMBDA_2",
			Name:      "Ensure Lambda function has Dead Letter Queue configured",
			Category:  CategoryBackup,
			AppliesTo: []string{kindLambda},
			Evaluate:  checkLambdaDLQ,
		},
	}
}

// Reserved concurrency keeps one function from exhausting account-level
// concurrency; zero is a valid reservation, so presence is the test.
func checkLambdaReservedConcurrency(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}
	if r.Prop("ReservedConcurrentExecutions").IsAbsent() {
		return VerdictFailed
	}
	return VerdictPassed
}

// Without a DLQ, async invocations that exhaust retries are dropped
// silently.
func checkLambdaDLQ(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}
	if r.Prop("DeadLetterConfig").Get("TargetArn").Truthy() {
		return VerdictPassed
	}
	return VerdictFailed
}
