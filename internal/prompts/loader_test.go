package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("insights.json", "event-insight-system")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "one_line_summary")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("insights.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("insights.json", "event-insight-user")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "카드사: {{.Company}}, 이벤트명: {{.Title}}"
	data := map[string]string{
		"Company": "신한카드",
		"Title":   "여름 캐시백 이벤트",
	}

	result := Format(template, data)
	assert.Equal(t, "카드사: 신한카드, 이벤트명: 여름 캐시백 이벤트", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestUserTemplate_HasAllPlaceholders(t *testing.T) {
	ClearCache()

	tmpl := MustGet("insights.json", "event-insight-user")
	for _, placeholder := range []string{
		"{{.Company}}", "{{.Title}}", "{{.Period}}", "{{.Target}}",
		"{{.Benefit}}", "{{.Conditions}}", "{{.Sections}}", "{{.RawExcerpt}}",
	} {
		assert.Contains(t, tmpl, placeholder)
	}
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("insights.json", "event-insight-system")
	require.NoError(t, err)

	prompt2, err := Get("insights.json", "event-insight-system")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
