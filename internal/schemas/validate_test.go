package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightResponseSchema_ValidJSONSchema(t *testing.T) {
	var v map[string]interface{}
	err := json.Unmarshal([]byte(InsightResponseSchema()), &v)
	require.NoError(t, err)
	assert.Equal(t, "object", v["type"])
}

func TestValidateInsightResponse_Valid(t *testing.T) {
	payload := `{
		"one_line_summary": "현대카드, 온라인 쇼핑 10% 청구할인 제공",
		"category": "쇼핑",
		"threat_level": "Mid",
		"threat_reason": "할인율은 준수하나 월 한도 1만원으로 체감 혜택이 제한적이다.",
		"benefit_level": "보통",
		"target_clarity": "보통",
		"competitive_points": ["조건 없는 청구할인"],
		"promo_strategies": ["디지털전환"],
		"objective_tags": ["객단가증대"],
		"target_tags": ["전연령"],
		"channel_tags": ["웹"],
		"marketing_takeaway": "온라인 결제 혜택 경쟁이 한도 중심으로 재편되고 있다."
	}`

	assert.NoError(t, ValidateInsightResponse(payload))
}

func TestValidateInsightResponse_MissingRequiredField(t *testing.T) {
	payload := `{"category": "쇼핑", "threat_level": "Low"}`

	err := ValidateInsightResponse(payload)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateInsightResponse_BadEnumValue(t *testing.T) {
	payload := `{
		"one_line_summary": "요약",
		"threat_level": "Severe",
		"benefit_level": "보통",
		"target_clarity": "보통"
	}`

	err := ValidateInsightResponse(payload)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(InsightResponseSchema(), "{not json")
	require.Error(t, err)

	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok, "malformed document should surface as SchemaLoadError")
}
