package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	codeFenceRegex     = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\r?\n?(.*?)\r?\n?```")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	objectRegex        = regexp.MustCompile(`(?s)\{.*\}`)
	arrayRegex         = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractText returns the trimmed response text, or ErrInvalidResponse when
// the model produced nothing.
func ExtractText(resp *Response) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrInvalidResponse)
	}
	return text, nil
}

// ExtractJSON decodes model output into T. It tries, in order: the raw text,
// the text with code fences removed, the text with trailing commas removed,
// and finally the outermost object or array found in the text.
func ExtractJSON[T any](text string) (T, error) {
	var zero T
	text = strings.TrimSpace(text)
	if text == "" {
		return zero, fmt.Errorf("%w: empty text", ErrInvalidResponse)
	}

	candidates := []string{text}
	unfenced := removeCodeFences(text)
	candidates = append(candidates, unfenced)
	cleaned := trailingCommaRegex.ReplaceAllString(unfenced, "$1")
	candidates = append(candidates, cleaned)
	if span := jsonSpan(cleaned); span != "" {
		candidates = append(candidates, span)
	}

	var lastErr error
	for _, c := range candidates {
		var v T
		if err := json.Unmarshal([]byte(c), &v); err != nil {
			lastErr = err
			continue
		}
		return v, nil
	}
	return zero, fmt.Errorf("%w: %v", ErrInvalidResponse, lastErr)
}

func removeCodeFences(text string) string {
	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// jsonSpan picks an object or array depending on which opening bracket
// comes first, so an array of objects is not cut down to its first element.
func jsonSpan(text string) string {
	obj := strings.IndexByte(text, '{')
	arr := strings.IndexByte(text, '[')
	if arr >= 0 && (obj < 0 || arr < obj) {
		if m := arrayRegex.FindString(text); m != "" {
			return m
		}
	}
	return objectRegex.FindString(text)
}
