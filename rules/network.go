package rules

import (
	"github.com/Nelson-Lamounier/cdk-monitoring/netrules"
	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// maxPortSpan is the widest acceptable ingress port range.
const maxPortSpan = 1000

// Ports that must never be reachable from external CIDRs: Prometheus
// and Node Exporter are internal scraping targets, Grafana goes through
// SSM port forwarding.
var (
	externalMetricsPorts = []int{9090, 9100}
	grafanaPort          = 3000
)

const kindSecurityGroup = "AWS::EC2::SecurityGroup"

func networkRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_SG_1",
			Name:      "Ensure security groups do not allow SSH ingress (use SSM Session Manager)",
			Category:  CategoryNetworking,
			AppliesTo: []string{kindSecurityGroup},
			Evaluate:  checkNoSSHIngress,
		},
		{
			ID:        "CKV_CUSTOM_SG_2",
			Name:      "Ensure security groups do not allow unrestricted egress to 0.0.0.0/0 on all protocols",
			Category:  CategoryNetworking,
			AppliesTo: []string{kindSecurityGroup},
			Evaluate:  checkRestrictedEgress,
		},
		{
			ID:        "CKV_CUSTOM_SG_3",
			Name:      "Ensure security group ingress rules do not allow full port ranges (0-65535)",
			Category:  CategoryNetworking,
			AppliesTo: []string{kindSecurityGroup, "AWS::EC2::SecurityGroupIngress"},
			Evaluate:  checkNoFullPortRange,
		},
		{
			ID:        "CKV_CUSTOM_SG_4",
			Name:      "Ensure metrics ports (9100, 9090) are not exposed to external CIDRs",
			Category:  CategoryNetworking,
			AppliesTo: []string{kindSecurityGroup},
			Evaluate:  checkNoExternalMetricsPorts,
		},
		{
			ID:        "CKV_CUSTOM_SG_5",
			Name:      "Ensure Grafana (port 3000) is not directly exposed to external CIDRs (use SSM port forwarding)",
			Category:  CategoryNetworking,
			AppliesTo: []string{kindSecurityGroup},
			Evaluate:  checkNoDirectGrafana,
		},
	}
}

// An empty rule set is nothing to flag, not allow-all: a group without
// properties passes every network check.

func checkNoSSHIngress(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}
	for _, rule := range netrules.IngressRules(r.Properties) {
		if rule.Covers(22) {
			return VerdictFailed
		}
	}
	return VerdictPassed
}

func checkRestrictedEgress(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}
	for _, rule := range netrules.EgressRules(r.Properties) {
		if rule.AllAddresses() && rule.AllProtocols() {
			return VerdictFailed
		}
	}
	return VerdictPassed
}

func checkNoFullPortRange(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}

	// Standalone ingress resources carry the rule fields directly on
	// their properties.
	if r.Kind == "AWS::EC2::SecurityGroupIngress" {
		if rule, ok := netrules.FromValue(r.Properties); ok && rule.SpanAtLeast(maxPortSpan) {
			return VerdictFailed
		}
		return VerdictPassed
	}

	for _, rule := range netrules.IngressRules(r.Properties) {
		if rule.SpanAtLeast(maxPortSpan) {
			return VerdictFailed
		}
	}
	return VerdictPassed
}

func checkNoExternalMetricsPorts(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}
	for _, rule := range netrules.IngressRules(r.Properties) {
		if !rule.IsExternal() {
			continue
		}
		for _, port := range externalMetricsPorts {
			if rule.Covers(port) {
				return VerdictFailed
			}
		}
	}
	return VerdictPassed
}

func checkNoDirectGrafana(r types.ResourceDeclaration) Verdict {
	if !r.HasProperties() {
		return VerdictPassed
	}
	for _, rule := range netrules.IngressRules(r.Properties) {
		if rule.IsExternal() && rule.Covers(grafanaPort) {
			return VerdictFailed
		}
	}
	return VerdictPassed
}
