package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHyundaiEventFromAPIItem(t *testing.T) {
	c := NewHyundai()

	t.Run("complete item", func(t *testing.T) {
		event, ok := c.eventFromAPIItem(hyundaiAPIItem{
			BnftWebEvntCd: "EV2026001",
			BnftEvntNm:    "주유소 최대 5만원 캐시백",
			SrtDttm:       "2026.02.01",
			EndDttm:       "2026.03.31",
			BnftEvntSmrCn: "주유 결제 시 캐시백 지급",
		}, "")
		require.True(t, ok)
		assert.Contains(t, event.SourceURL, "bnftWebEvntCd=EV2026001")
		assert.Contains(t, event.SourceURL, "hyundaicard.com")
		assert.Equal(t, "2026.02.01~2026.03.31", event.Period)
		assert.Equal(t, "교통", event.Category)
	})

	t.Run("missing event code rejected", func(t *testing.T) {
		_, ok := c.eventFromAPIItem(hyundaiAPIItem{BnftEvntNm: "코드 없는 이벤트"}, "")
		assert.False(t, ok)
	})

	t.Run("chrome title rejected", func(t *testing.T) {
		_, ok := c.eventFromAPIItem(hyundaiAPIItem{BnftWebEvntCd: "EV1", BnftEvntNm: "이벤트"}, "")
		assert.False(t, ok)
	})
}

func TestNextCursor(t *testing.T) {
	assert.Equal(t, "84", nextCursor("56", "28", 28), "API echo takes precedence")
	assert.Equal(t, "56", nextCursor("", "28", 28), "fall back to the sent cursor")
	assert.Equal(t, "abc", nextCursor("", "abc", 28), "non-numeric cursors stay put")
}
