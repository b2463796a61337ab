// Package config loads viva-api settings from an optional config.yaml and
// VIVA_-prefixed environment variables, applies defaults, and validates the
// result. The server, the examiner, the LLM providers and the task runner each
// read their own section.
package config
