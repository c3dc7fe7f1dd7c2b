package matcher

import (
	"strings"
	"time"
	"unicode"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
)

// Season is a northern-hemisphere calendar season
type Season string

// Seasons by meteorological quarter
const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

var seasonKeywords = map[Season][]string{
	SeasonSpring: {"asparagus", "pea", "strawberry", "spinach", "artichoke", "radish"},
	SeasonSummer: {"tomato", "cucumber", "zucchini", "watermelon", "corn", "blueberry", "raspberry", "blackberry", "peach"},
	SeasonAutumn: {"pumpkin", "apple", "squash", "sweet potato", "mushroom", "pear"},
	SeasonWinter: {"cabbage", "citrus", "orange", "kale", "leek", "turnip", "pomegranate"},
}

// SeasonFor maps a month to its season
func SeasonFor(month time.Month) Season {
	switch month {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// Keywords returns the ingredient keywords of the season
func (s Season) Keywords() []string {
	return seasonKeywords[s]
}

// IsSeasonal reports whether any ingredient name or alias contains a keyword of
// the season as whole words. Plural forms count, "pea" matches "peas" but not "peanut".
func IsSeasonal(tpl domain.MealTemplate, season Season) bool {
	keywords := season.Keywords()
	for _, ing := range tpl.Ingredients {
		if containsKeyword(ing.FoodName, keywords) {
			return true
		}
		for _, alias := range ing.FoodAliases {
			if containsKeyword(alias, keywords) {
				return true
			}
		}
	}
	return false
}

// containsKeyword matches each keyword as a run of consecutive words of text
func containsKeyword(text string, keywords []string) bool {
	words := splitWords(text)
	for _, kw := range keywords {
		kwWords := splitWords(kw)
		if len(kwWords) == 0 || len(kwWords) > len(words) {
			continue
		}
		for i := 0; i+len(kwWords) <= len(words); i++ {
			if wordsMatch(words[i:i+len(kwWords)], kwWords) {
				return true
			}
		}
	}
	return false
}

func wordsMatch(words, kwWords []string) bool {
	last := len(kwWords) - 1
	for i, kw := range kwWords {
		if i == last {
			if !isWordForm(words[i], kw) {
				return false
			}
			continue
		}
		if words[i] != kw {
			return false
		}
	}
	return true
}

// isWordForm accepts the keyword itself and its regular English plural
func isWordForm(word, kw string) bool {
	switch word {
	case kw, kw + "s", kw + "es":
		return true
	}
	return strings.HasSuffix(kw, "y") && word == strings.TrimSuffix(kw, "y")+"ies"
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// containsAny is a case-insensitive substring check against each needle
func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if strings.Contains(h, n) {
			return true
		}
	}
	return false
}
