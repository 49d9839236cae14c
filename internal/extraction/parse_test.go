package extraction

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractDateRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dotted range", "2026.02.11 ~ 2026.05.31", "2026.02.11~2026.05.31"},
		{"two digit years", "26-02-11 ~ 26-05-31", "2026.02.11~2026.05.31"},
		{"weekday parentheses", "2026.02.11(수) ~ 2026.05.31(일)", "2026.02.11~2026.05.31"},
		{"end year omitted", "2026.02.11 ~ 02.28", "2026.02.11~2026.02.28"},
		{"korean notation", "2026년 2월 11일 ~ 2026년 5월 31일", "2026.02.11~2026.05.31"},
		{"korean with 부터", "2026년 2월 11일부터 2026년 5월 31일", "2026.02.11~2026.05.31"},
		{"no range", "상시 진행 이벤트", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDateRange(tt.input))
		})
	}
}

func TestExtractTitle(t *testing.T) {
	t.Run("benefit keyword wins over longer heading", func(t *testing.T) {
		doc := fixtureDoc(t, `
			<html><body><main>
			<h1>조금 더 길고 장황한 일반 안내 헤딩입니다</h1>
			<h2>주유 최대 5만원 할인</h2>
			</main></body></html>`)
		assert.Equal(t, "주유 최대 5만원 할인", extractTitle(doc))
	})

	t.Run("chrome headings skipped", func(t *testing.T) {
		doc := fixtureDoc(t, `
			<html><body>
			<h1>삼성카드</h1>
			<main><h2>커피 구독 캐시백 이벤트</h2></main>
			</body></html>`)
		assert.Equal(t, "커피 구독 캐시백 이벤트", extractTitle(doc))
	})

	t.Run("og title fallback", func(t *testing.T) {
		doc := fixtureDoc(t, `
			<html><head><meta property="og:title" content="봄맞이 할인 대축제 | 신한카드"></head>
			<body></body></html>`)
		assert.Equal(t, "봄맞이 할인 대축제", extractTitle(doc))
	})

	t.Run("no candidates", func(t *testing.T) {
		doc := fixtureDoc(t, `<html><body><p>본문</p></body></html>`)
		assert.Equal(t, "", extractTitle(doc))
	})
}

func TestExtractPeriodPrefersTopLines(t *testing.T) {
	doc := fixtureDoc(t, `<html><body><p>하단 날짜 2020.01.01 ~ 2020.12.31</p></body></html>`)
	rawText := "이벤트 안내입니다 유의하세요\n이벤트 기간: 2026.02.01 ~ 2026.03.31\n하단 날짜 2020.01.01 ~ 2020.12.31"
	assert.Equal(t, "2026.02.01~2026.03.31", extractPeriod(doc, rawText))
}

func TestExtractPeriodKeywordLine(t *testing.T) {
	doc := fixtureDoc(t, `<html><body></body></html>`)
	lines := make([]string, 0, 45)
	for i := 0; i < 44; i++ {
		lines = append(lines, "본문 내용이 이어지는 안내 문장입니다 번호 "+strings.Repeat("가", i%5+1))
	}
	lines = append(lines, "응모기간 2026.03.01 ~ 2026.03.31")
	period := extractPeriod(doc, strings.Join(lines, "\n"))
	assert.Equal(t, "2026.03.01~2026.03.31", period)
}

func TestInferBenefitType(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"전 가맹점 할인 및 캐시백", "할인"},
		{"캐시백과 포인트 적립", "캐시백"},
		{"포인트 적립 혜택", "포인트적립"},
		{"무이자 12개월", "무이자할부"},
		{"사은품 무료 증정", "사은품"},
		{"특별 초대", "기타"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, inferBenefitType(tt.text), "text: %s", tt.text)
	}
}

func TestExtractAmountsAndPercents(t *testing.T) {
	amounts, percents := extractAmountsAndPercents(
		"첫 결제 3,000원 할인, 이후 5만원 캐시백, 최대 10% 청구할인, 주말 12.5％ 적립, 다시 10% 할인")
	assert.Equal(t, []string{"3,000원", "5만원"}, amounts)
	assert.Equal(t, []string{"10%", "12.5%"}, percents)

	amounts, percents = extractAmountsAndPercents("혜택 없음")
	assert.Empty(t, amounts)
	assert.Empty(t, percents)
}
