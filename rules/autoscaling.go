package rules

import "github.com/Nelson-Lamounier/cdk-monitoring/types"

// minGroupSize is the high-availability floor for auto scaling groups.
const minGroupSize = 2

const kindAutoScalingGroup = "AWS::AutoScaling::AutoScalingGroup"

func autoscalingRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_ASG_1",
			Name:      "Ensure ASG uses ELB health check type when behind load balancer",
			Category:  CategoryGeneral,
			AppliesTo: []string{kindAutoScalingGroup},
			Evaluate:  checkASGHealthCheckType,
		},
		{
			ID:        "CKV_CUSTOM_ASG_2",
			Name:      "Ensure ASG MinSize is at least 2 for HA",
			Category:  CategoryGeneral,
			AppliesTo: []string{kindAutoScalingGroup},
			Evaluate:  checkASGMinSize,
		},
	}
}

// EC2 health checks only see the hypervisor; a crashed application
// stays "healthy". Groups behind a load balancer must use ELB checks.
// Groups without a load balancer attachment are exempt.
func checkASGHealthCheckType(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}

	behindLB := r.Prop("TargetGroupARNs").Truthy() || r.Prop("LoadBalancerNames").Truthy()
	if !behindLB {
		return VerdictPassed
	}

	healthCheck := r.Prop("HealthCheckType")
	if healthCheck.IsAbsent() {
		// CloudFormation defaults to EC2.
		return VerdictFailed
	}
	if healthCheck.Text() == "ELB" {
		return VerdictPassed
	}
	return VerdictFailed
}

func checkASGMinSize(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}

	minSize := r.Prop("MinSize")
	if minSize.IsAbsent() {
		return VerdictFailed
	}

	n, ok := minSize.Int()
	if !ok {
		return VerdictUnknown
	}
	if n >= minGroupSize {
		return VerdictPassed
	}
	return VerdictFailed
}
