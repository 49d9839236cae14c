package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRawText(t *testing.T) {
	raw := strings.Join([]string{
		"이벤트 기간 2026.02.01 ~ 2026.03.31",
		"스타벅스 결제 시 최대 1만원 캐시백을 드립니다. 자세한 내용은 하단을 확인하세요.",
		"로그인",
		"삼성카드",
		"이벤트에 응모되었습니다. 감사합니다.",
		"개인(신용)정보 수집·이용 동의 안내",
		"· 대상카드: 전 상품 · 월 1회 한도",
		"이벤트 기간 2026.02.01 ~ 2026.03.31",
		"짧음",
	}, "\n")

	lines := SplitRawText(raw)
	require.NotEmpty(t, lines)

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "이벤트 기간 2026.02.01 ~ 2026.03.31")
	assert.Contains(t, joined, "최대 1만원 캐시백")
	assert.Contains(t, joined, "대상카드: 전 상품")
	assert.NotContains(t, joined, "로그인")
	assert.NotContains(t, joined, "응모되었습니다")
	assert.NotContains(t, joined, "개인(신용)정보")
	assert.NotContains(t, joined, "짧음")

	// The duplicate period line must appear once.
	count := 0
	for _, line := range lines {
		if line == "이벤트 기간 2026.02.01 ~ 2026.03.31" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSplitRawTextSentences(t *testing.T) {
	lines := SplitRawText("첫 결제 시 5천원 캐시백을 드립니다. 추가 결제 시 포인트를 적립해 드려요.")
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "첫 결제 시 5천원 캐시백을 드립니다.")
	assert.Contains(t, joined, "추가 결제 시 포인트를 적립해 드려요.")
}

func TestSplitRawTextEmpty(t *testing.T) {
	assert.Empty(t, SplitRawText(""))
	assert.Empty(t, SplitRawText("\n \n\t\n"))
}

func TestIsHeaderLike(t *testing.T) {
	assert.True(t, isHeaderLike("삼성카드"))
	assert.True(t, isHeaderLike("로그인 안내문"), "prefix followed by a space is chrome")
	assert.True(t, isHeaderLike("짧다"))
	assert.False(t, isHeaderLike("삼성카드와 함께하는 봄맞이 프로모션"))
}

func TestIsNotificationBanner(t *testing.T) {
	assert.True(t, isNotificationBanner("이벤트에 응모되었습니다. 감사합니다."))
	assert.True(t, isNotificationBanner("마이홈 앱의 자산 연결 서비스를 이용해보세요"))
	assert.False(t, isNotificationBanner("응모 방법을 확인하세요"))
}

func TestIsNonMarketingNoise(t *testing.T) {
	assert.True(t, isNonMarketingNoise("개인(신용)정보 수집·이용 동의서 안내"))
	assert.True(t, isNonMarketingNoise("소득세법에 따라 과세 처리될 수 있습니다"))
	assert.False(t, isNonMarketingNoise("청구할인 혜택은 법령상 한도 내에서 제공됩니다"),
		"benefit wording without consent language survives the filter")
	assert.False(t, isNonMarketingNoise("스타벅스 할인 이벤트"))
}
