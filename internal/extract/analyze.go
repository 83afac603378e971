package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/dataminer/internal/model"
)

// MaxKeywords is the number of keywords kept per page.
const MaxKeywords = 20

// minKeywordLength drops short tokens such as "a", "of" and "to".
const minKeywordLength = 3

var (
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	phoneRegex = regexp.MustCompile(`(\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
	urlRegex   = regexp.MustCompile(`https?://[^\s<>"'()]+`)
	wordRegex  = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
)

// socialPatterns hold one capture group with the handle. RE2 has no
// lookbehind, so @handles require a non-handle character or the start of
// the text before the '@' to keep e-mail domains out.
var socialPatterns = []struct {
	platform model.SocialPlatform
	re       *regexp.Regexp
}{
	{model.SocialPlatformTwitter, regexp.MustCompile(`(?:^|[^A-Za-z0-9_.@])(@[A-Za-z0-9_]+)`)},
	{model.SocialPlatformInstagram, regexp.MustCompile(`(?:^|[^A-Za-z0-9_.@])(@[A-Za-z0-9_.]+)`)},
	{model.SocialPlatformFacebook, regexp.MustCompile(`(facebook\.com/[A-Za-z0-9_.]+)`)},
	{model.SocialPlatformLinkedIn, regexp.MustCompile(`(linkedin\.com/in/[A-Za-z0-9_.\-]+)`)},
}

var financialPatterns = []struct {
	category model.FinancialCategory
	re       *regexp.Regexp
}{
	{model.FinancialCreditCard, regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`)},
	{model.FinancialSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{model.FinancialBitcoin, regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`)},
	{model.FinancialEthereum, regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)},
}

// Analyze derives counts, contact identifiers, social handles, financial
// tokens and keywords from normalized page text. Matches keep their order
// of appearance. Platforms and categories without matches are omitted.
func Analyze(content string) model.Analysis {
	a := model.Analysis{
		Emails:   nonNil(emailRegex.FindAllString(content, -1)),
		Phones:   nonNil(phoneRegex.FindAllString(content, -1)),
		URLs:     extractURLs(content),
		Keywords: topKeywords(content, MaxKeywords),
	}

	if strings.TrimSpace(content) != "" {
		a.WordCount = len(strings.Fields(content))
		a.CharCount = utf8.RuneCountInString(content)
		a.SentenceCount = countNonBlank(sentenceSplit.Split(content, -1))
		a.ParagraphCount = countNonBlank(paragraphSplit.Split(content, -1))
	}

	for _, p := range socialPatterns {
		var handles []string
		for _, m := range p.re.FindAllStringSubmatch(content, -1) {
			h := strings.TrimRight(m[1], ".")
			if h != "" {
				handles = append(handles, h)
			}
		}
		if len(handles) > 0 {
			if a.SocialHandles == nil {
				a.SocialHandles = make(map[model.SocialPlatform][]string)
			}
			a.SocialHandles[p.platform] = handles
		}
	}

	for _, p := range financialPatterns {
		if tokens := p.re.FindAllString(content, -1); len(tokens) > 0 {
			if a.FinancialTokens == nil {
				a.FinancialTokens = make(map[model.FinancialCategory][]string)
			}
			a.FinancialTokens[p.category] = tokens
		}
	}

	return a
}

// extractURLs finds http(s) URLs and trims trailing sentence punctuation.
func extractURLs(content string) []string {
	out := []string{}
	for _, u := range urlRegex.FindAllString(content, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// topKeywords returns up to n lowercase words of at least three letters,
// most frequent first. Equal counts keep first-seen order.
func topKeywords(content string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range wordRegex.FindAllString(content, -1) {
		// Accented or mixed words are skipped whole, not cut into fragments.
		if len(w) < minKeywordLength || !isASCIIWord(w) {
			continue
		}
		w = strings.ToLower(w)
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return nonNil(order)
}

func isASCIIWord(w string) bool {
	for i := 0; i < len(w); i++ {
		c := w[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func countNonBlank(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
