package extraction

import (
	"regexp"
	"strings"

	"github.com/jonathan/promo-radar/internal/textutil"
)

// headerLike are site-chrome strings shared across the four card sites.
// A candidate line equal to one, or starting/ending with one as a word, is
// navigation text rather than event content.
var headerLike = []string{
	"삼성카드", "삼성 카드", "samsungcard", "Samsung",
	"신한카드", "신한 카드", "shinhancard", "Shinhan",
	"현대카드", "현대 카드", "hyundaicard", "Hyundai",
	"KB국민카드", "KB 국민카드", "KB카드", "kbcard",
	"로그인", "마이페이지", "이벤트 목록", "전체메뉴", "고객센터",
	"회원가입", "빠른메뉴", "사이트맵",
}

// notificationPrefixes mark post-entry confirmation banners that replace
// the real event body after a user has already entered.
var notificationPrefixes = []string{
	"이벤트에 응모되었습니다", "이벤트에 응모 되었습니다", "이벤트에 응모됐습니다",
	"이벤트 참여가 완료되었습니다", "응모가 완료되었습니다",
	"이미 참여하셨습니다", "이미 응모하셨습니다",
}

// privacyNoise flags consent boilerplate that keyword-matches marketing
// sections but carries no campaign content.
var privacyNoise = []string{
	"개인(신용)정보", "개인정보", "고유식별정보",
	"수집·이용", "수집이용", "수집 이용", "수집·이용 목적",
	"제3자 제공", "동의를 거부할", "주민등록번호", "개인정보처리방침",
	"신용정보", "법정대리인", "동의하지 않으실 경우",
	"소득세법", "과세 처리", "과세처리", "법령", "보유기간", "파기",
}

// explicitMarketing words rescue a line from the privacy filter when it
// clearly talks about the benefit itself.
var explicitMarketing = []string{
	"혜택", "할인", "캐시백", "적립", "무이자", "청구할인", "즉시할인",
	"참여방법", "이벤트 기간", "대상카드",
}

var splitNoiseWords = []string{
	"로그인", "회원가입", "전체메뉴", "고객센터", "마이페이지", "개인사업자", "개인정보처리방침",
}

func isHeaderLike(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || len([]rune(t)) <= 5 {
		return true
	}
	for _, h := range headerLike {
		if t == h || strings.HasPrefix(t, h+" ") || strings.HasSuffix(t, " "+h) {
			return true
		}
	}
	return false
}

func isNotificationBanner(text string) bool {
	t := strings.TrimSpace(text)
	if len([]rune(t)) < 10 {
		return false
	}
	for _, p := range notificationPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return strings.Contains(t, "마이홈 앱의") && strings.Contains(t, "자산 연결")
}

// isNonMarketingNoise filters privacy-consent boilerplate while keeping
// lines that speak about the benefit directly.
func isNonMarketingNoise(text string) bool {
	t := textutil.CleanText(text)
	if t == "" {
		return true
	}
	if !textutil.ContainsAny(t, privacyNoise) {
		return false
	}
	if textutil.ContainsAny(t, explicitMarketing) &&
		!strings.Contains(t, "개인정보") && !strings.Contains(t, "동의") {
		return false
	}
	return true
}

var sentenceSplitRe = regexp.MustCompile(`(?:[.!?]|다\.|요\.)\s+`)

// splitSentences splits a line after sentence-final punctuation, keeping
// the punctuation with the sentence.
func splitSentences(line string) []string {
	locs := sentenceSplitRe.FindAllStringIndex(line, -1)
	if locs == nil {
		return nil
	}
	var parts []string
	prev := 0
	for _, loc := range locs {
		// Keep everything up to the whitespace inside the match.
		end := loc[0]
		for end < loc[1] && !isSpaceByte(line[end]) {
			end++
		}
		parts = append(parts, line[prev:end])
		prev = loc[1]
	}
	parts = append(parts, line[prev:])
	return parts
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// SplitRawText breaks raw body text into deduplicated candidate lines for
// section classification. Lines are split further at sentence boundaries
// and bullet markers; chrome, banners, consent boilerplate, and anything
// outside 6-700 runes is dropped. Dedup is by NormalizeKey.
func SplitRawText(rawText string) []string {
	if rawText == "" {
		return nil
	}

	var chunks []string
	for _, rawLine := range strings.Split(strings.ReplaceAll(rawText, "\r", "\n"), "\n") {
		line := textutil.CleanText(rawLine)
		if line == "" {
			continue
		}
		chunks = append(chunks, line)
		for _, part := range splitSentences(line) {
			part = textutil.CleanText(part)
			if part != "" && part != line {
				chunks = append(chunks, part)
			}
		}
		for _, marker := range []string{"·", "•", "※", "|"} {
			if strings.Contains(line, marker) {
				for _, part := range strings.Split(line, marker) {
					part = textutil.CleanText(part)
					if part != "" && part != line {
						chunks = append(chunks, part)
					}
				}
			}
		}
	}

	seen := map[string]struct{}{}
	var lines []string
	for _, chunk := range chunks {
		n := len([]rune(chunk))
		if n < 6 || n > 700 {
			continue
		}
		if isHeaderLike(chunk) || isNotificationBanner(chunk) {
			continue
		}
		if isNonMarketingNoise(chunk) {
			continue
		}
		if textutil.ContainsAny(chunk, splitNoiseWords) && n <= 35 {
			continue
		}
		key := textutil.NormalizeKey(chunk)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		lines = append(lines, chunk)
	}
	return lines
}
