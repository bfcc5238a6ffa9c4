package rules

import (
	"github.com/Nelson-Lamounier/cdk-monitoring/policydoc"
	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

func messagingRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_SNS_1",
			Name:      "Ensure SNS topic is encrypted with KMS",
			Category:  CategoryEncryption,
			AppliesTo: []string{"AWS::SNS::Topic"},
			Evaluate:  checkTopicEncryption,
		},
		{
			ID:        "CKV_CUSTOM_SNS_2",
			Name:      "Ensure SNS topic policy denies non-SSL transport",
			Category:  CategoryEncryption,
			AppliesTo: []string{"AWS::SNS::TopicPolicy"},
			Evaluate:  checkPolicyDeniesInsecureTransport,
		},
		{
			ID:        "CKV_CUSTOM_SQS_1",
			Name:      "Ensure SQS queue policy enforces SSL (aws:SecureTransport)",
			Category:  CategoryEncryption,
			AppliesTo: []string{"AWS::SQS::QueuePolicy"},
			Evaluate:  checkPolicyDeniesInsecureTransport,
		},
	}
}

// Topics carry infrastructure metadata (instance IDs, scaling events)
// and must be encrypted at rest.
func checkTopicEncryption(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}
	if r.Prop("KmsMasterKeyId").Truthy() {
		return VerdictPassed
	}
	return VerdictFailed
}

// Both SNS and SQS express SSL enforcement the same way: an attached
// policy resource with a Deny statement on aws:SecureTransport false.
func checkPolicyDeniesInsecureTransport(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}
	for _, stmt := range policydoc.StatementsOf(r.Prop("PolicyDocument")) {
		if stmt.DeniesInsecureTransport() {
			return VerdictPassed
		}
	}
	return VerdictFailed
}
