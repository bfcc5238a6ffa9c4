package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

// propsWithUserData wraps a script the way CDK synthesizes it.
func propsWithUserData(script string) types.Value {
	return types.Map(
		types.Field("UserData", types.Map(
			types.Field("Fn::Base64", types.String(script)),
		)),
	)
}

func TestCheckNoHardcodedCredentials(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   Verdict
	}{
		{"hardcoded password", "export PASSWORD=hunter2", VerdictFailed},
		{"quoted secret", `SECRET="abc123"`, VerdictFailed},
		{"api key", "API_KEY = deadbeef", VerdictFailed},
		{"admin password", "ADMIN_PASSWORD=letmein", VerdictFailed},
		{"env var reference", "PASSWORD=$SECRET_ENV", VerdictPassed},
		{"template reference", "PASSWORD={resolve:ssm:/db/pass}", VerdictPassed},
		{"secrets manager lookup", "PASSWORD=secretsmanager", VerdictPassed},
		{"no credentials at all", "yum install -y docker", VerdictPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := res(t, kindInstance, "")
			r.Properties = propsWithUserData(tt.script)
			assert.Equal(t, tt.want, checkNoHardcodedCredentials(r))
		})
	}
}

// One benign assignment must not mask a genuine violation elsewhere in
// the same script.
func TestCheckNoHardcodedCredentials_ExclusionIsPerMatch(t *testing.T) {
	r := res(t, kindInstance, "")
	r.Properties = propsWithUserData("PASSWORD=$FROM_ENV\nTOKEN=hardcoded123")
	assert.Equal(t, VerdictFailed, checkNoHardcodedCredentials(r))
}

func TestCheckNoHardcodedCredentials_NoUserData(t *testing.T) {
	assert.Equal(t, VerdictPassed, checkNoHardcodedCredentials(res(t, kindInstance, "")))
	assert.Equal(t, VerdictPassed, checkNoHardcodedCredentials(res(t, kindInstance, `{ImageId: ami-123}`)))
}

func TestCheckIMDSv2(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   Verdict
	}{
		{
			"imdsv1 curl without token",
			`curl http://169.254.169.254/latest/meta-data/instance-id`,
			VerdictFailed,
		},
		{
			"token acquired first",
			"TOKEN=$(curl -X PUT http://169.254.169.254/latest/api/token)\n" +
				`curl -H "X-aws-ec2-metadata-token: $TOKEN" http://169.254.169.254/latest/meta-data/instance-id`,
			VerdictPassed,
		},
		{
			"no metadata access at all",
			"yum update -y",
			VerdictPassed,
		},
		{
			"tokened call inline",
			`curl -H "X-aws-ec2-metadata-token: $T" http://169.254.169.254/latest/meta-data/ && curl -X PUT http://169.254.169.254/latest/api/token`,
			VerdictPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := res(t, kindInstance, "")
			r.Properties = propsWithUserData(tt.script)
			assert.Equal(t, tt.want, checkIMDSv2(r))
		})
	}
}

func TestCheckDockerLoopbackBinding(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   Verdict
	}{
		{
			"unsafe binding only",
			"docker compose up\nports:\n  - \"3000:3000\"",
			VerdictFailed,
		},
		{
			"loopback binding only",
			"docker compose up\nports:\n  - \"127.0.0.1:3000:3000\"",
			VerdictPassed,
		},
		{
			"more unsafe than safe",
			"docker compose up\nports:\n  - \"127.0.0.1:3000:3000\"\n  - \"9090:9090\"\n  - \"9100:9100\"",
			VerdictFailed,
		},
		{
			"balanced bindings",
			"docker compose up\nports:\n  - \"127.0.0.1:3000:3000\"\n  - \"9090:9090\"",
			VerdictPassed,
		},
		{
			"no docker in script",
			"ports:\n  - \"3000:3000\"",
			VerdictPassed,
		},
		{
			"docker without port syntax",
			"docker run --network host app",
			VerdictPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := res(t, kindInstance, "")
			r.Properties = propsWithUserData(tt.script)
			assert.Equal(t, tt.want, checkDockerLoopbackBinding(r))
		})
	}
}
