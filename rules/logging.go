package rules

import "github.com/Nelson-Lamounier/cdk-monitoring/types"

// minRetentionDays is the compliance floor for log retention.
const minRetentionDays = 90

const kindLogGroup = "AWS::Logs::LogGroup"

// Rule IDs keep the VPC_ prefix they were published under; the checks
// were originally written for VPC flow log groups.
func loggingRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_VPC_1",
			Name:      "Ensure CloudWatch Log Group is encrypted with KMS",
			Category:  CategoryEncryption,
			AppliesTo: []string{kindLogGroup},
			Evaluate:  checkLogGroupKMS,
		},
		{
			ID:        "CKV_CUSTOM_VPC_2",
			Name:      "Ensure CloudWatch Log Group retention is >= 90 days",
			Category:  CategoryLogging,
			AppliesTo: []string{kindLogGroup},
			Evaluate:  checkLogGroupRetention,
		},
		{
			ID:        "CKV_CUSTOM_VPC_3",
			Name:      "Ensure CloudWatch Log Group has DeletionPolicy Retain",
			Category:  CategoryBackup,
			AppliesTo: []string{kindLogGroup},
			Evaluate:  checkLogGroupRetainPolicy,
		},
	}
}

func checkLogGroupKMS(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}
	if r.Prop("KmsKeyId").Truthy() {
		return VerdictPassed
	}
	return VerdictFailed
}

func checkLogGroupRetention(r types.ResourceDeclaration) Verdict {
	retention := r.Prop("RetentionInDays")
	if retention.IsAbsent() {
		// No retention set means logs are kept forever, which satisfies
		// any minimum.
		return VerdictPassed
	}

	days, ok := retention.Int()
	if !ok {
		return VerdictUnknown
	}
	if days >= minRetentionDays {
		return VerdictPassed
	}
	return VerdictFailed
}

func checkLogGroupRetainPolicy(r types.ResourceDeclaration) Verdict {
	// Audit logs must survive stack deletion and replacement.
	if r.DeletionPolicy == types.PolicyRetain && r.UpdateReplacePolicy == types.PolicyRetain {
		return VerdictPassed
	}
	return VerdictFailed
}
