package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kbListingFixture = `
<html><body>
<div id="main_contents">
  <ul class="eventList">
    <li>
      <a href="javascript:goDetail('12345')">
        <span class="evtlist-desc"><span class="tit">스타벅스 5천원 할인 쿠폰</span></span>
        <span class="date">2026.2.1(토) ~ 2.28(금)</span>
      </a>
    </li>
    <li>
      <a href="javascript:goDetail('12346')">
        <img alt="주유 최대 3만원 캐시백" src="/img/evt.png">
        <span class="date">2026.03.01 ~ 2026.03.31</span>
      </a>
    </li>
    <li>
      <a href="javascript:goOther('999')">무관한 링크</a>
    </li>
    <li>
      <a href="javascript:goDetail('12347')"><span class="tit">이벤트</span></a>
    </li>
  </ul>
</div>
</body></html>`

func TestKBParseListing(t *testing.T) {
	c := NewKB()
	events := c.parseListing(kbListingFixture)
	require.Len(t, events, 2, "non-goDetail links and chrome-only titles are skipped")

	assert.Equal(t, "스타벅스 5천원 할인 쿠폰", events[0].Title)
	assert.Contains(t, events[0].SourceURL, "eventNum=12345")
	assert.Equal(t, "2026.02.01~2026.02.28", events[0].Period, "year-less end date inherits the start year")
	assert.Equal(t, "식음료", events[0].Category)

	assert.Equal(t, "주유 최대 3만원 캐시백", events[1].Title, "image alt text serves as title")
	assert.Contains(t, events[1].SourceURL, "eventNum=12346")
	assert.Equal(t, "2026.03.01~2026.03.31", events[1].Period)
}

func TestExtractKBEventNo(t *testing.T) {
	assert.Equal(t, "12345", extractKBEventNo("javascript:goDetail('12345')"))
	assert.Equal(t, "", extractKBEventNo("javascript:goDetail(id)"))
	assert.Equal(t, "", extractKBEventNo(""))
}

func TestExtractKBPeriod(t *testing.T) {
	assert.Equal(t, "2026.02.01~2026.02.28", extractKBPeriod("기간 2026.2.1(토) ~ 2.28(금) 한정"))
	assert.Equal(t, "2026.03.01~2026.03.31", extractKBPeriod("2026.03.01~2026.03.31"))
	assert.Equal(t, "", extractKBPeriod("상시 진행"))
}
