package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckASGHealthCheckType(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Verdict
	}{
		{"no properties", "", VerdictPassed},
		{"not behind load balancer", `{MinSize: 2, MaxSize: 4}`, VerdictPassed},
		{
			"behind target group with elb check",
			`{TargetGroupARNs: ["arn:aws:elasticloadbalancing:..."], HealthCheckType: ELB}`,
			VerdictPassed,
		},
		{
			"behind target group default check",
			`{TargetGroupARNs: ["arn:aws:elasticloadbalancing:..."]}`,
			VerdictFailed,
		},
		{
			"behind classic lb with ec2 check",
			`{LoadBalancerNames: [web-lb], HealthCheckType: EC2}`,
			VerdictFailed,
		},
		{
			"empty attachment lists",
			`{TargetGroupARNs: [], LoadBalancerNames: []}`,
			VerdictPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkASGHealthCheckType(res(t, kindAutoScalingGroup, tt.src)))
		})
	}
}

func TestCheckASGMinSize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Verdict
	}{
		{"no properties", "", VerdictFailed},
		{"min size missing", `{MaxSize: 4}`, VerdictFailed},
		{"min size one", `{MinSize: 1}`, VerdictFailed},
		{"min size two", `{MinSize: 2}`, VerdictPassed},
		{"string min size", `{MinSize: "3"}`, VerdictPassed},
		{"unparsable min size", `{MinSize: some}`, VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkASGMinSize(res(t, kindAutoScalingGroup, tt.src)))
		})
	}
}
