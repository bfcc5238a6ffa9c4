package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckVolumeCustomerManagedKey(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Verdict
	}{
		// Distinct default from the network domain: a volume with no
		// properties is unencrypted, so the rule fails.
		{"no properties", "", VerdictFailed},
		{
			"encrypted with customer key",
			`{Encrypted: true, KmsKeyId: "arn:aws:kms:eu-west-1:111:key/abc"}`,
			VerdictPassed,
		},
		{"encrypted default key", `{Encrypted: true}`, VerdictFailed},
		{"encrypted empty key", `{Encrypted: true, KmsKeyId: ""}`, VerdictFailed},
		{"unencrypted", `{Encrypted: false, KmsKeyId: "arn:..."}`, VerdictFailed},
		{"encryption unset", `{Size: 100}`, VerdictFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkVolumeCustomerManagedKey(res(t, kindVolume, tt.src)))
		})
	}
}

func TestCheckMonitoringVolumeSize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Verdict
	}{
		{"no properties", "", VerdictPassed},
		{
			"monitoring volume too small",
			`{Size: 30, Tags: [{Key: application, Value: prometheus}]}`,
			VerdictFailed,
		},
		{
			"monitoring volume at floor",
			`{Size: 50, Tags: [{Key: purpose, Value: monitoring}]}`,
			VerdictPassed,
		},
		{
			"tag key case insensitive",
			`{Size: 30, Tags: [{Key: Application, Value: Grafana}]}`,
			VerdictFailed,
		},
		{
			"non-monitoring volume exempt",
			`{Size: 8, Tags: [{Key: application, Value: webserver}]}`,
			VerdictPassed,
		},
		{
			"untagged volume exempt",
			`{Size: 8}`,
			VerdictPassed,
		},
		{
			"unrelated tag key exempt",
			`{Size: 8, Tags: [{Key: team, Value: prometheus}]}`,
			VerdictPassed,
		},
		{
			"unparsable size",
			`{Size: big, Tags: [{Key: application, Value: prometheus}]}`,
			VerdictUnknown,
		},
		{
			"missing size",
			`{Tags: [{Key: application, Value: prometheus}]}`,
			VerdictUnknown,
		},
		{
			"malformed tag entries skipped",
			`{Size: 8, Tags: [plain-string]}`,
			VerdictPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkMonitoringVolumeSize(res(t, kindVolume, tt.src)))
		})
	}
}

func TestCheckBackupStrategy_AlwaysFails(t *testing.T) {
	assert.Equal(t, VerdictFailed, checkBackupStrategy(res(t, kindVolume, "")))
	assert.Equal(t, VerdictFailed, checkBackupStrategy(res(t, kindVolume, `{Size: 500}`)))
}
