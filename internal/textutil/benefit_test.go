package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBenefit(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAmount int64
		wantPct    float64
		wantOK     bool
	}{
		{"percent with cap", "10% (최대 1만원)", 10000, 10.0, true},
		{"plain amount", "5000원 캐시백", 5000, 0, true},
		{"man unit", "30만원 상당", 300000, 0, true},
		{"cheon unit", "5천원 할인", 5000, 0, true},
		{"comma grouping", "100,000원", 100000, 0, true},
		{"percent only", "최대 30% 할인", 0, 30.0, true},
		{"decimal percent", "2.5% 적립", 0, 2.5, true},
		{"placeholder", "정보 없음", 0, 0, false},
		{"dash placeholder", "-", 0, 0, false},
		{"empty", "", 0, 0, false},
		{"no numbers", "풍성한 혜택", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, pct, ok := ParseBenefit(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantPct, pct)
		})
	}
}

func TestExtractAmounts(t *testing.T) {
	amounts := ExtractAmounts("첫 결제 5천원, 추가 결제 시 최대 10만원 캐시백")
	require.Len(t, amounts, 2)
	assert.Equal(t, int64(5000), amounts[0])
	assert.Equal(t, int64(100000), amounts[1])
	assert.Equal(t, int64(100000), MaxAmount(amounts))

	assert.Empty(t, ExtractAmounts("할인 혜택"))
	assert.Equal(t, int64(0), MaxAmount(nil))
}

func TestExtractPercents(t *testing.T) {
	pcts := ExtractPercents("기본 5% 적립, 주말 10% 적립")
	require.Len(t, pcts, 2)
	assert.Equal(t, 10.0, MaxPercent(pcts))

	assert.Empty(t, ExtractPercents("전원 증정"))
	assert.Equal(t, 0.0, MaxPercent(nil))
}
