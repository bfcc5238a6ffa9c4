package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSubnetNoAutoPublicIP(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Verdict
	}{
		{"no properties", "", VerdictPassed},
		{"unset defaults private", `{CidrBlock: "10.0.1.0/24"}`, VerdictPassed},
		{"explicit false", `{MapPublicIpOnLaunch: false}`, VerdictPassed},
		{"boolean true", `{MapPublicIpOnLaunch: true}`, VerdictFailed},
		{"string true", `{MapPublicIpOnLaunch: "True"}`, VerdictFailed},
		{"string false", `{MapPublicIpOnLaunch: "false"}`, VerdictPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkSubnetNoAutoPublicIP(res(t, "AWS::EC2::Subnet", tt.src)))
		})
	}
}

func TestCheckVPCEndpointPolicy(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Verdict
	}{
		{"no properties", "", VerdictFailed},
		{"no policy document", `{ServiceName: com.amazonaws.eu-west-1.s3}`, VerdictFailed},
		{"empty statement list", `{PolicyDocument: {Statement: []}}`, VerdictFailed},
		{
			"restrictive policy",
			`{PolicyDocument: {Statement: [{Effect: Allow, Action: "s3:GetObject"}]}}`,
			VerdictPassed,
		},
		{"policy is not a mapping", `{PolicyDocument: "full-access"}`, VerdictFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkVPCEndpointPolicy(res(t, "AWS::EC2::VPCEndpoint", tt.src)))
		})
	}
}
