package scoring

import "strings"

// stopwordSets backs a minimal stopword-overlap language detector, scoped
// to the handful of languages the scoring service accepts.
var stopwordSets = map[string][]string{
	"en": {"the", "and", "is", "of", "to", "in", "for", "with", "on"},
	"es": {"el", "la", "y", "de", "en", "para", "con", "los", "las"},
	"fr": {"le", "la", "et", "de", "en", "pour", "avec", "les", "des"},
	"de": {"der", "die", "und", "von", "zu", "mit", "das", "ist", "den"},
	"pt": {"o", "a", "e", "de", "para", "com", "os", "as", "que"},
}

// DetectLanguage returns a best-guess ISO-639-1 code based on stopword
// overlap, defaulting to "en" when the body is too short or ambiguous
// before handing surviving content to the scoring service.
func DetectLanguage(body string) string {
	words := strings.Fields(strings.ToLower(body))
	if len(words) < 5 {
		return "en"
	}
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?;:\"'()")] = true
	}

	bestLang := "en"
	bestScore := 0
	tied := false
	for lang, stopwords := range stopwordSets {
		score := 0
		for _, sw := range stopwords {
			if wordSet[sw] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestLang = lang
			tied = false
		} else if score == bestScore && score > 0 {
			tied = true
		}
	}
	if tied {
		return "en"
	}
	return bestLang
}
