package config

import "fmt"

const (
	errRequiredEnvNotSetFmt = "required environment variable %s is not set"
	warnInvalidEnvValueFmt  = "Warning: ignoring %s=%q (%s expected), using default %v"
)

type messageBuilders struct {
	requiredEnvNotSet func(string) string
	invalidEnvValue   func(key, value, kind string, fallback any) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
		invalidEnvValue: func(key, value, kind string, fallback any) string {
			return fmt.Sprintf(warnInvalidEnvValueFmt, key, value, kind, fallback)
		},
	}
}

var messages = newMessageBuilders()
