package rules

import (
	"regexp"
	"strings"

	"github.com/Nelson-Lamounier/cdk-monitoring/intrinsics"
	"github.com/Nelson-Lamounier/cdk-monitoring/types"
)

const kindInstance = "AWS::EC2::Instance"

// Credential-shaped assignments in user data scripts.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PASSWORD\s*=\s*['"]?\w+['"]?`),
	regexp.MustCompile(`(?i)SECRET\s*=\s*['"]?\w+['"]?`),
	regexp.MustCompile(`(?i)API_KEY\s*=\s*['"]?\w+['"]?`),
	regexp.MustCompile(`(?i)TOKEN\s*=\s*['"]?\w+['"]?`),
	regexp.MustCompile(`(?i)ADMIN_PASSWORD\s*=\s*['"]?\w+['"]?`),
}

// Exclusions for matches that are variable interpolation or secret-store
// references rather than literal values. Each is tested against the
// matched substring only, so one benign line cannot suppress a genuine
// violation elsewhere in the script.
var falsePositivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PASSWORD\s*=\s*\$`),
	regexp.MustCompile(`(?i)PASSWORD\s*=\s*\{`),
	regexp.MustCompile(`(?i)secretsmanager`),
}

const metadataHost = "169.254.169.254"

var (
	metadataCallPattern = regexp.MustCompile(`169\.254\.169\.254/latest/meta-data`)
	tokenHeaderPattern  = regexp.MustCompile(`-H\s+["']X-aws-ec2-metadata-token`)
	tokenAcquirePattern = regexp.MustCompile(`(?s)curl\s+.*-X\s+PUT.*169\.254\.169\.254/latest/api/token`)
)

var (
	unsafePortBinding = regexp.MustCompile(`["']\d+:\d+["']`)
	safePortBinding   = regexp.MustCompile(`["']127\.0\.0\.1:\d+:\d+["']`)
)

func computeRules() []Rule {
	return []Rule{
		{
			ID:        "CKV_CUSTOM_COMPUTE_1",
			Name:      "Ensure EC2 UserData does not contain hardcoded credentials",
			Category:  CategoryGeneral,
			AppliesTo: []string{kindInstance},
			Evaluate:  checkNoHardcodedCredentials,
		},
		{
			ID:        "CKV_CUSTOM_COMPUTE_2",
			Name:      "Ensure EC2 UserData uses IMDSv2 token-based metadata calls (not IMDSv1 curl)",
			Category:  CategoryGeneral,
			AppliesTo: []string{kindInstance},
			Evaluate:  checkIMDSv2,
		},
		{
			ID:        "CKV_CUSTOM_COMPUTE_4",
			Name:      "Ensure Docker containers bind ports to 127.0.0.1, not 0.0.0.0",
			Category:  CategoryNetworking,
			AppliesTo: []string{kindInstance},
			Evaluate:  checkDockerLoopbackBinding,
		},
	}
}

// userDataScript extracts the assembled user data script, or "" when the
// resource has none.
func userDataScript(r types.ResourceDeclaration) string {
	if !r.HasProperties() {
		return ""
	}
	userData := r.Prop("UserData")
	if !userData.Truthy() {
		return ""
	}
	return intrinsics.Script(userData)
}

func checkNoHardcodedCredentials(r types.ResourceDeclaration) Verdict {
	script := userDataScript(r)
	if script == "" {
		return VerdictPassed
	}

	for _, pattern := range credentialPatterns {
		for _, match := range pattern.FindAllString(script, -1) {
			if !isFalsePositive(match) {
				return VerdictFailed
			}
		}
	}
	return VerdictPassed
}

func isFalsePositive(match string) bool {
	for _, fp := range falsePositivePatterns {
		if fp.MatchString(match) {
			return true
		}
	}
	return false
}

// checkIMDSv2 flags metadata-service calls that never acquire a session
// token. A curl hitting /latest/meta-data without the token header is an
// IMDSv1 call; it is acceptable only if the script also performs the
// PUT /latest/api/token handshake.
func checkIMDSv2(r types.ResourceDeclaration) Verdict {
	script := userDataScript(r)
	if script == "" {
		return VerdictPassed
	}
	if !strings.Contains(script, metadataHost) {
		return VerdictPassed
	}

	if hasUntokenedMetadataCall(script) && !tokenAcquirePattern.MatchString(script) {
		return VerdictFailed
	}
	return VerdictPassed
}

// hasUntokenedMetadataCall finds a metadata-path fetch whose invoking
// curl carries no token header between the command and the URL.
func hasUntokenedMetadataCall(script string) bool {
	for _, loc := range metadataCallPattern.FindAllStringIndex(script, -1) {
		curlAt := strings.LastIndex(script[:loc[0]], "curl")
		if curlAt < 0 {
			continue
		}
		if !tokenHeaderPattern.MatchString(script[curlAt:loc[0]]) {
			return true
		}
	}
	return false
}

func checkDockerLoopbackBinding(r types.ResourceDeclaration) Verdict {
	script := userDataScript(r)
	if script == "" {
		return VerdictPassed
	}
	if !strings.Contains(strings.ToLower(script), "docker") {
		return VerdictPassed
	}
	if !strings.Contains(script, "ports:") {
		return VerdictPassed
	}

	unsafe := len(unsafePortBinding.FindAllString(script, -1))
	safe := len(safePortBinding.FindAllString(script, -1))

	if unsafe > 0 && safe == 0 {
		return VerdictFailed
	}
	if unsafe > safe {
		return VerdictFailed
	}
	return VerdictPassed
}
