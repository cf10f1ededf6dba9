package services

import (
	"math"
	"regexp"
	"strings"
)

// nonWord matches the separators between keywords. ASCII-only on purpose:
// accented letters split tokens the same way the stored scores were computed.
var nonWord = regexp.MustCompile(`\W+`)

// dottedCapitalI lowers to "i" plus a combining dot above, not to a bare "i",
// so the dot still splits the token.
var dottedCapitalI = strings.NewReplacer("\u0130", "i\u0307")

func lower(s string) string {
	return strings.ToLower(dottedCapitalI.Replace(s))
}

// JobKeywords returns the unique lower-cased tokens longer than two
// characters, in first-seen order.
func JobKeywords(description string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, tok := range nonWord.Split(lower(description), -1) {
		if len(tok) <= 2 || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

// ScoreFit computes the 0-100 keyword overlap between résumé text and a job
// description. A keyword counts as matched when it occurs anywhere in the
// résumé, including inside a longer word ("java" matches "javascript").
func ScoreFit(resumeText, jobDescription string) int {
	if resumeText == "" {
		return 0
	}
	keywords := JobKeywords(jobDescription)
	if len(keywords) == 0 {
		return 0
	}

	text := lower(resumeText)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched++
		}
	}
	return int(math.Round(float64(matched) / float64(len(keywords)) * 100))
}
