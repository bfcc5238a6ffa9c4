package rules

import (
	"strings"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

func vpcRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_VPC_5",
			Name:      "Ensure subnets do not auto-assign public IPs (prod should use private subnets)",
			Category:  CategoryNetworking,
			AppliesTo: []string{"AWS::EC2::Subnet"},
			Evaluate:  checkSubnetNoAutoPublicIP,
		},
		{
			ID:        "CKV_CUSTOM_VPC_6",
			Name:      "Ensure VPC Endpoints have a restrictive policy document",
			Category:  CategoryNetworking,
			AppliesTo: []string{"AWS::EC2::VPCEndpoint"},
			Evaluate:  checkVPCEndpointPolicy,
		},
	}
}

// Only load balancer subnets should face the internet; compute subnets
// stay private.
func checkSubnetNoAutoPublicIP(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}

	auto := r.Prop("MapPublicIpOnLaunch")
	if b, ok := auto.Bool(); ok && b {
		return VerdictFailed
	}
	if strings.EqualFold(auto.Text(), "true") {
		return VerdictFailed
	}
	return VerdictPassed
}

// Gateway endpoints without an explicit policy document default to full
// access to the service.
func checkVPCEndpointPolicy(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictFailed
	}

	policy := r.Prop("PolicyDocument")
	if policy.IsMap() && policy.Get("Statement").Truthy() {
		return VerdictPassed
	}
	return VerdictFailed
}
