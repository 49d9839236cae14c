package connectors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShinhanPayloadItems(t *testing.T) {
	raw := `{
		"root": {"evnlist": [{"mobWbEvtNm": "카탈로그 이벤트"}]},
		"mbw_json": {
			"dpEvtList": [{"mobWbEvtNm": "노출 이벤트"}],
			"ingEvtList": [{"mobWbEvtNm": "진행 이벤트"}],
			"zipEvtList": [],
			"evtList": [{"mobWbEvtNm": "일반 이벤트"}]
		}
	}`
	var payload shinhanPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	items := payload.items()
	require.Len(t, items, 4)
	assert.Equal(t, "카탈로그 이벤트", items[0].MobWbEvtNm)
}

func TestShinhanEventFromItem(t *testing.T) {
	c := NewShinhan()

	t.Run("compact dates preferred", func(t *testing.T) {
		event, ok := c.eventFromItem(shinhanItem{
			MobWbEvtNm:   "해외 항공권 마일리지 이벤트",
			HpgEvtDetail: "/mob/MOBFM829N/MOBFM829R02.shc?evtId=77",
			MobWbEvtStd:  "20260201",
			MobWbEvtEdd:  "20260331",
			HpgEvtSmrTt:  "마일리지 2배 적립",
		})
		require.True(t, ok)
		assert.Equal(t, "2026.02.01~2026.03.31", event.Period)
		assert.Equal(t, "여행", event.Category)
		assert.Contains(t, event.SourceURL, "shinhancard.com")
		assert.Contains(t, event.RawText, "마일리지 2배 적립")
	})

	t.Run("term text fallback", func(t *testing.T) {
		event, ok := c.eventFromItem(shinhanItem{
			EvtImgSlTilNm: "카페 할인 이벤트",
			EvtDtlURL:     "https://www.shinhancard.com/evt/123",
			EvtTermTxt:    "2026.02.01 ~ 2026.02.28",
		})
		require.True(t, ok)
		assert.Equal(t, "2026.02.01~2026.02.28", event.Period)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		_, ok := c.eventFromItem(shinhanItem{EvtDtlURL: "https://www.shinhancard.com/evt/1"})
		assert.False(t, ok)
	})

	t.Run("missing url rejected", func(t *testing.T) {
		_, ok := c.eventFromItem(shinhanItem{MobWbEvtNm: "제목만 있는 이벤트"})
		assert.False(t, ok)
	})
}

func TestExtractPeriodFromText(t *testing.T) {
	assert.Equal(t, "2026.02.01~2026.03.31",
		extractPeriodFromText("이벤트 기간 2026.02.01 ~ 2026.03.31 중 결제 시"))
	assert.Equal(t, "", extractPeriodFromText("상시 진행"))
}

func TestInferTitleFromBlock(t *testing.T) {
	assert.Equal(t, "봄맞이 카페 이벤트",
		inferTitleFromBlock("더보기 | 봄맞이 카페 이벤트 | 2026.03.01"))
	assert.Equal(t, "", inferTitleFromBlock("더보기 | 공지"), "blocks without event wording yield nothing")
	assert.Equal(t, "", inferTitleFromBlock(""))
}
