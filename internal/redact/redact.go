// Package redact scrubs credentials, provider API keys, connection strings,
// file paths and SQL from text before it reaches logs or clients.
package redact

import (
	"regexp"
	"strings"
)

// Placeholders substituted for redacted fragments.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	name        string
	pattern     *regexp.Regexp
	placeholder string
}

// rules run in order; provider keys come first so the generic key rule
// never sees them half-replaced.
var rules = []rule{
	{"anthropic_key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{16,}`), KeyPlaceholder},
	{"gemini_key", regexp.MustCompile(`AIza[0-9A-Za-z_-]{30,}`), KeyPlaceholder},
	{"bearer", regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}=*`), "Bearer " + KeyPlaceholder},
	{"jwt", regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{"dsn", regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb|redis|db|database)://[^@\s]+@`), CredentialPlaceholder},
	{"password", regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), CredentialPlaceholder},
	{"api_key", regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), KeyPlaceholder},
	{"aws_key", regexp.MustCompile(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`), KeyPlaceholder},
	{"stack", regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
	{"unix_path", regexp.MustCompile(`(/[\w.-]+){2,}`), PathPlaceholder},
	{"windows_path", regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), PathPlaceholder},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{"sql", regexp.MustCompile(
		`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|GRANT)[\s\w,*()]+(?:FROM|INTO|SET|TABLE|DATABASE|SCHEMA|VIEW)(?:[\s\w,*()='"]+)?`,
	), "[REDACTED_SQL]"},
	{"line_number", regexp.MustCompile(`(?:at )?line ?\d+`), "[REDACTED_LINE_NUMBER]"},
	{"syntax", regexp.MustCompile(`(?i)syntax error|syntax problem|parse error`), "[REDACTED_SYNTAX_ERROR]"},
	{"host", regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	), "[REDACTED_HOST]"},
	{"file_error", regexp.MustCompile(`(?i)no such file|file not found|can't open|cannot open|file error`), "[REDACTED_FILE_ERROR]"},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error redacts err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Mask hides a configured secret for startup logs, keeping only its last
// four characters when the secret is long enough to spare them.
func Mask(secret string) string {
	secret = strings.TrimSpace(secret)
	switch {
	case secret == "":
		return ""
	case len(secret) < 12:
		return Placeholder
	default:
		return "****" + secret[len(secret)-4:]
	}
}
