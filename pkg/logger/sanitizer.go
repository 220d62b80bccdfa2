package logger

import (
	"regexp"
	"strings"
)

// Sensitive field patterns to filter from logs
var (
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s]+`)
	tokenPattern    = regexp.MustCompile(`(?i)(token|jwt|bearer|session)[\s:=]+[^\s]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|private[_-]?key)[\s:=]+[^\s]+`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

const redactedPlaceholder = "[REDACTED]"

// SanitizeLogMessage removes sensitive information from log messages
func SanitizeLogMessage(message string) string {
	// Redact passwords
	message = passwordPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)

	// Redact tokens
	message = tokenPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)

	// Redact secrets
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)

	// Mask addresses
	message = emailPattern.ReplaceAllStringFunc(message, MaskEmail)

	return message
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return redactedPlaceholder
	}
	return email[:1] + "***" + email[at:]
}

// SanitizeMap removes sensitive keys from a map
func SanitizeMap(data map[string]interface{}) map[string]interface{} {
	sensitiveKeys := []string{
		"password", "passwd", "pwd",
		"token", "jwt", "bearer", "cookie",
		"secret", "private_key", "private-key",
		"password_hash", "passwordhash",
	}

	sanitized := make(map[string]interface{}, len(data))
	for k, v := range data {
		lowerKey := strings.ToLower(k)
		isSensitive := false

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(lowerKey, sensitiveKey) {
				isSensitive = true
				break
			}
		}

		switch {
		case isSensitive:
			sanitized[k] = redactedPlaceholder
		case lowerKey == "email":
			if s, ok := v.(string); ok {
				sanitized[k] = MaskEmail(s)
			} else {
				sanitized[k] = v
			}
		default:
			sanitized[k] = v
		}
	}

	return sanitized
}
