package settings

import "fmt"

// MergeResult describes the outcome of a settings merge.
type MergeResult int

const (
	// MergeSuccess means the settings file was created or updated.
	MergeSuccess MergeResult = iota
	// MergeAlreadyConfigured means every required key was already correct.
	MergeAlreadyConfigured
	// MergeNeedsConfirmation means interactive mode found differing values
	// and did not write anything.
	MergeNeedsConfirmation
	// MergeError means the merge failed; Err carries the cause.
	MergeError
)

// MergeOptions controls how Merge behaves.
type MergeOptions struct {
	// SettingsPath overrides the default ~/.claude/settings.json location.
	SettingsPath string

	// GRPCPort is the local OTLP gRPC port the endpoint should point at.
	// Zero means the default 4317.
	GRPCPort int

	// Interactive makes Merge stop and ask before overwriting differing
	// values instead of skipping them with a warning.
	Interactive bool

	// FixPortOnly restricts the merge to OTEL_EXPORTER_OTLP_ENDPOINT.
	FixPortOnly bool
}

// MergeOutput is the result of a Merge call.
type MergeOutput struct {
	Result   MergeResult
	Messages []string
	Warnings []string
	Err      error
}

// RequiredOTelEnv returns the environment variables Claude Code needs to
// stream its session telemetry, including prompt text, to a local OTLP
// receiver on the given gRPC port.
func RequiredOTelEnv(grpcPort int) map[string]string {
	return map[string]string{
		"CLAUDE_CODE_ENABLE_TELEMETRY": "1",
		"OTEL_LOGS_EXPORTER":           "otlp",
		"OTEL_EXPORTER_OTLP_PROTOCOL":  "grpc",
		"OTEL_EXPORTER_OTLP_ENDPOINT":  fmt.Sprintf("http://localhost:%d", grpcPort),
		"OTEL_LOG_USER_PROMPTS":        "1",
	}
}
