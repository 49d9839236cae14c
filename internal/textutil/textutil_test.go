package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "삼성카드 여름 이벤트", CleanText("  삼성카드 \t 여름\n이벤트  "))
	assert.Equal(t, "", CleanText("   \n\t "))
	assert.Equal(t, "a b", CleanText("a  b"))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, NormalizeKey("최대 10% 할인!"), NormalizeKey("최대  10%   할인"),
		"punctuation and spacing differences should collapse to the same key")
	assert.Equal(t, "abc가나다123", NormalizeKey("A b-C 가나다 (123)"))
	assert.Equal(t, "", NormalizeKey("!@# $%"))

	long := strings.Repeat("가", 200)
	assert.Len(t, []rune(NormalizeKey(long)), 140)
}

func TestIsEmptyValue(t *testing.T) {
	for _, v := range []string{"", "  ", "정보 없음", "정보없음", "제목 없음", "상세 페이지 참조", "-", "/", "기간 정보 없음"} {
		assert.True(t, IsEmptyValue(v), "%q should count as empty", v)
	}
	for _, v := range []string{"2026.02.01~2026.03.31", "최대 10% 할인", "0"} {
		assert.False(t, IsEmptyValue(v), "%q should not count as empty", v)
	}
}

func TestScoreKeywords(t *testing.T) {
	kws := []string{"할인", "캐시백", "적립"}
	assert.Equal(t, 2, ScoreKeywords("결제 시 할인 및 적립 혜택", kws))
	assert.Equal(t, 0, ScoreKeywords("유의사항 안내", kws))
	assert.Equal(t, 0, ScoreKeywords("", kws))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "가나다", Truncate("가나다라마", 3))
	assert.Equal(t, "ab", Truncate("ab", 5))

	// the cut must never land inside a multibyte character
	long := strings.Repeat("오류", 300)
	cut := Truncate(long, 500)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, 500, utf8.RuneCountInString(cut))
}
