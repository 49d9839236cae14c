// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSONText pulls the JSON payload out of a model response. LLMs
// often wrap JSON in ```json ... ``` fences even when instructed not to;
// failing a fence match, the text between the first '{' and the last '}'
// is taken. Returns the trimmed input when neither form is present.
func ExtractJSONText(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
