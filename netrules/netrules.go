// Package netrules models security group ingress/egress entries and the
// port and CIDR reasoning the network rules share.
package netrules

import (
	"strconv"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// NetworkRule is one direction-agnostic ingress or egress entry.
// CIDR fields keep their raw value: a template may carry an intrinsic
// (Ref, Fn::ImportValue) instead of a literal range, and that still
// names an address source.
type NetworkRule struct {
	FromPort            types.Value
	ToPort              types.Value
	CidrIP              types.Value
	CidrIPv6            types.Value
	SourceSecurityGroup bool
	Protocol            string
}

// FromValue extracts a NetworkRule from a rule mapping. ok is false for
// anything that is not a mapping, which callers skip.
func FromValue(v types.Value) (NetworkRule, bool) {
	if !v.IsMap() {
		return NetworkRule{}, false
	}
	return NetworkRule{
		FromPort:            v.Get("FromPort"),
		ToPort:              v.Get("ToPort"),
		CidrIP:              v.Get("CidrIp"),
		CidrIPv6:            v.Get("CidrIpv6"),
		SourceSecurityGroup: v.Get("SourceSecurityGroupId").Truthy() || v.Get("SourceSecurityGroupName").Truthy(),
		Protocol:            protocolString(v.Get("IpProtocol")),
	}, true
}

// IngressRules extracts the inline ingress entries of a security group
// properties mapping, skipping malformed items.
func IngressRules(props types.Value) []NetworkRule {
	return rulesOf(props, "SecurityGroupIngress")
}

// EgressRules extracts the inline egress entries.
func EgressRules(props types.Value) []NetworkRule {
	return rulesOf(props, "SecurityGroupEgress")
}

func rulesOf(props types.Value, key string) []NetworkRule {
	var out []NetworkRule
	for _, item := range props.Get(key).List() {
		if rule, ok := FromValue(item); ok {
			out = append(out, rule)
		}
	}
	return out
}

// PortPair returns both port bounds as integers. ok is false when either
// bound is absent or fails integer coercion.
func (r NetworkRule) PortPair() (from, to int, ok bool) {
	from, fromOK := r.FromPort.Int()
	to, toOK := r.ToPort.Int()
	if !fromOK || !toOK {
		return 0, 0, false
	}
	return from, to, true
}

// IsExternal reports whether the rule's source is a raw address range.
// A rule that also names a security group source is SG-scoped: exposure
// through a peer group is intra-VPC and exempt from external-exposure
// checks.
func (r NetworkRule) IsExternal() bool {
	return (r.CidrIP.Truthy() || r.CidrIPv6.Truthy()) && !r.SourceSecurityGroup
}

// Covers reports whether the parsed port span includes port.
func (r NetworkRule) Covers(port int) bool {
	from, to, ok := r.PortPair()
	return ok && from <= port && port <= to
}

// SpanAtLeast reports whether the parsed port span width reaches n.
func (r NetworkRule) SpanAtLeast(n int) bool {
	from, to, ok := r.PortPair()
	return ok && to-from >= n
}

// AllAddresses reports whether the rule targets every IPv4 or IPv6
// address.
func (r NetworkRule) AllAddresses() bool {
	return r.CidrIP.Text() == "0.0.0.0/0" || r.CidrIPv6.Text() == "::/0"
}

// AllProtocols reports whether the protocol is the -1 wildcard.
func (r NetworkRule) AllProtocols() bool {
	return r.Protocol == "-1" || r.Protocol == "-1.0"
}

// protocolString renders the IpProtocol field, which templates carry as
// either a string ("tcp", "-1") or a number (-1).
func protocolString(v types.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
