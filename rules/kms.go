package rules

import (
	"github.com/Nelson-Lamounier/cdk-monitoring/policydoc"
	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

const kindKMSKey = "AWS::KMS::Key"

func kmsRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_KMS_1",
			Name:      "Ensure KMS key policy does not use kms:* wildcard action",
			Category:  CategoryIAM,
			AppliesTo: []string{kindKMSKey},
			Evaluate:  checkKMSNoWildcardActions,
		},
		{
			ID:        "CKV_CUSTOM_KMS_2",
			Name:      "Ensure KMS key has DeletionPolicy Retain",
			Category:  CategoryBackup,
			AppliesTo: []string{kindKMSKey},
			Evaluate:  checkKMSRetainPolicy,
		},
	}
}

// kms:* grants key deletion and cross-account grant rights; key policies
// must enumerate actions. No key policy at all means the service default
// applies, which is acceptable.
func checkKMSNoWildcardActions(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}

	keyPolicy := r.Prop("KeyPolicy")
	if !keyPolicy.Truthy() {
		return VerdictPassed
	}

	doc, err := policydoc.Normalize(keyPolicy)
	if err != nil {
		return VerdictUnknown
	}

	for _, stmt := range policydoc.StatementsOf(doc) {
		if stmt.HasWildcardAction("kms:*") {
			return VerdictFailed
		}
	}
	return VerdictPassed
}

// Deleting a key makes everything encrypted under it unrecoverable;
// production keys must be retained on stack deletion.
func checkKMSRetainPolicy(r types.ResourceDeclaration) Verdict {
	if r.DeletionPolicy == types.PolicyRetain {
		return VerdictPassed
	}
	return VerdictFailed
}
