package rules

import (
	"strings"

	"github.com/Nelson-Lamounier/cdk-monitoring/policydoc"
	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// maxAWSManagedPolicies caps AWS-managed policy attachments per role.
// ECS EC2 instance roles typically need three (ECS, SSM, CloudWatch).
const maxAWSManagedPolicies = 3

const awsManagedPolicyPrefix = "arn:aws:iam::aws:policy/"

const kindRole = "AWS::IAM::Role"

func iamRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_IAM_1",
			Name:      "Ensure IAM Role has permissions boundary configured",
			Category:  CategoryIAM,
			AppliesTo: []string{kindRole},
			Evaluate:  checkPermissionsBoundary,
		},
		{
			ID:        "CKV_CUSTOM_IAM_2",
			Name:      "Ensure no hardcoded account IDs in IAM policy resource ARNs",
			Category:  CategoryIAM,
			AppliesTo: []string{"AWS::IAM::Policy", kindRole},
			Evaluate:  checkNoHardcodedAccountIDs,
		},
		{
			ID:        "CKV_CUSTOM_IAM_3",
			Name:      "Ensure IAM Role does not have static name (allow safe CFN updates)",
			Category:  CategoryIAM,
			AppliesTo: []string{kindRole},
			Evaluate:  checkNoStaticRoleName,
		},
		{
			ID:        "CKV_CUSTOM_IAM_4",
			Name:      "Ensure IAM Role has at most 3 AWS managed policies",
			Category:  CategoryIAM,
			AppliesTo: []string{kindRole},
			Evaluate:  checkManagedPolicyCap,
		},
		{
			ID:        "CKV_CUSTOM_IAM_5",
			Name:      "Ensure IAM Role has at least one policy attached (not empty)",
			Category:  CategoryIAM,
			AppliesTo: []string{kindRole},
			Evaluate:  checkRoleHasPolicy,
		},
	}
}

func checkPermissionsBoundary(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}
	if r.Prop("PermissionsBoundary").Truthy() {
		return VerdictPassed
	}
	// Service-linked roles are AWS-managed and carry no boundary.
	if isServiceLinkedTrust(r.Prop("AssumeRolePolicyDocument")) {
		return VerdictPassed
	}
	return VerdictFailed
}

func isServiceLinkedTrust(assumeDoc types.Value) bool {
	for _, stmt := range policydoc.StatementsOf(assumeDoc) {
		service := stmt.Principal.Get("Service").Text()
		if !strings.Contains(service, "amazonaws.com") {
			continue
		}
		if strings.HasPrefix(service, "elasticmapreduce") || strings.Contains(service, "autoscaling") {
			return true
		}
	}
	return false
}

// Hardcoded account IDs break multi-account portability; templates
// should use the AccountId pseudo parameter instead.
func checkNoHardcodedAccountIDs(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}

	// Inline policies on a role.
	for _, policy := range r.Prop("Policies").List() {
		if hasHardcodedAccountID(policy.Get("PolicyDocument")) {
			return VerdictFailed
		}
	}

	// The document of a standalone policy resource.
	if hasHardcodedAccountID(r.Prop("PolicyDocument")) {
		return VerdictFailed
	}
	return VerdictPassed
}

func hasHardcodedAccountID(doc types.Value) bool {
	for _, stmt := range policydoc.StatementsOf(doc) {
		if stmt.HasHardcodedAccountID() {
			return true
		}
	}
	return false
}

// A literal RoleName pins the resource and blocks replacement during
// updates; generated and intrinsic-function names are safe.
func checkNoStaticRoleName(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}

	name := r.Prop("RoleName")
	if !name.Truthy() {
		return VerdictPassed
	}
	if name.IsMap() {
		return VerdictPassed
	}
	return VerdictFailed
}

func checkManagedPolicyCap(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}

	arns := r.Prop("ManagedPolicyArns")
	entries := arns.List()
	if entries == nil && !arns.IsAbsent() {
		entries = []types.Value{arns}
	}

	count := 0
	for _, entry := range entries {
		arn, ok := entry.Str()
		if !ok {
			continue
		}
		// Customer-managed ARNs do not count toward the cap.
		if strings.HasPrefix(arn, awsManagedPolicyPrefix) {
			count++
		}
	}

	if count <= maxAWSManagedPolicies {
		return VerdictPassed
	}
	return VerdictFailed
}

// A role with no policies at all is likely incomplete; ECS task roles
// that receive grants later should suppress with a reason.
func checkRoleHasPolicy(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}
	if r.Prop("ManagedPolicyArns").Truthy() || r.Prop("Policies").Truthy() {
		return VerdictPassed
	}
	return VerdictFailed
}
