package netrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

func ruleFromYAML(t *testing.T, src string) NetworkRule {
	t.Helper()
	rule, ok := FromValue(types.MustParseYAML(src))
	require.True(t, ok)
	return rule
}

func TestPortPair(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantFrom int
		wantTo   int
		wantOK   bool
	}{
		{"string bounds", `{FromPort: "22", ToPort: "22"}`, 22, 22, true},
		{"numeric bounds", `{FromPort: 0, ToPort: 65535}`, 0, 65535, true},
		{"unparsable from", `{FromPort: "x", ToPort: 22}`, 0, 0, false},
		{"missing to", `{FromPort: 22}`, 0, 0, false},
		{"no ports", `{CidrIp: "10.0.0.0/8"}`, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := ruleFromYAML(t, tt.src).PortPair()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestIsExternal(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"ipv4 cidr", `{CidrIp: "203.0.113.0/24"}`, true},
		{"ipv6 cidr", `{CidrIpv6: "::/0"}`, true},
		{"intrinsic cidr", `{CidrIp: {"Fn::ImportValue": OfficeCidr}}`, true},
		{"ref cidr", `{CidrIp: {Ref: AllowedRange}}`, true},
		{"sg source only", `{SourceSecurityGroupId: sg-123}`, false},
		{"cidr plus sg is sg-scoped", `{CidrIp: "10.0.0.0/8", SourceSecurityGroupId: sg-123}`, false},
		{"cidr plus sg name", `{CidrIp: "10.0.0.0/8", SourceSecurityGroupName: web}`, false},
		{"no source at all", `{FromPort: 80, ToPort: 80}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ruleFromYAML(t, tt.src).IsExternal())
		})
	}
}

func TestCovers(t *testing.T) {
	rule := ruleFromYAML(t, `{FromPort: 20, ToPort: 23}`)
	assert.True(t, rule.Covers(22))
	assert.True(t, rule.Covers(20))
	assert.True(t, rule.Covers(23))
	assert.False(t, rule.Covers(24))

	unparsable := ruleFromYAML(t, `{FromPort: "x", ToPort: 23}`)
	assert.False(t, unparsable.Covers(22))
}

func TestSpanAtLeast(t *testing.T) {
	assert.True(t, ruleFromYAML(t, `{FromPort: 0, ToPort: 1000}`).SpanAtLeast(1000))
	assert.False(t, ruleFromYAML(t, `{FromPort: 0, ToPort: 999}`).SpanAtLeast(1000))
	assert.False(t, ruleFromYAML(t, `{FromPort: 0}`).SpanAtLeast(1000))
}

func TestAllProtocols(t *testing.T) {
	assert.True(t, ruleFromYAML(t, `{IpProtocol: "-1"}`).AllProtocols())
	assert.True(t, ruleFromYAML(t, `{IpProtocol: -1}`).AllProtocols())
	assert.False(t, ruleFromYAML(t, `{IpProtocol: tcp}`).AllProtocols())
	assert.False(t, ruleFromYAML(t, `{FromPort: 80}`).AllProtocols())
}

func TestAllAddresses(t *testing.T) {
	assert.True(t, ruleFromYAML(t, `{CidrIp: "0.0.0.0/0"}`).AllAddresses())
	assert.True(t, ruleFromYAML(t, `{CidrIpv6: "::/0"}`).AllAddresses())
	assert.False(t, ruleFromYAML(t, `{CidrIp: "10.0.0.0/8"}`).AllAddresses())
	assert.False(t, ruleFromYAML(t, `{CidrIp: {"Fn::ImportValue": AnyRange}}`).AllAddresses())
}

func TestIngressRules_SkipsMalformed(t *testing.T) {
	props := types.MustParseYAML(`
SecurityGroupIngress:
  - {FromPort: 22, ToPort: 22}
  - "not a rule"
  - {FromPort: 80, ToPort: 80}
`)
	rules := IngressRules(props)
	require.Len(t, rules, 2)
	assert.True(t, rules[0].Covers(22))
	assert.True(t, rules[1].Covers(80))
}

func TestEgressRules_Empty(t *testing.T) {
	assert.Empty(t, EgressRules(types.Absent))
	assert.Empty(t, EgressRules(types.MustParseYAML(`{GroupDescription: x}`)))
}
