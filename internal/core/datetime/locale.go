package datetime

import (
	"golang.org/x/text/language"
)

// localePatterns holds the %c rendering per supported locale. The first
// entry is the fallback used for unknown or unset locales.
var localePatterns = []struct {
	tag     language.Tag
	pattern string
}{
	{language.Und, "%Y M%m %d, %a %H:%M:%S"},
	{language.AmericanEnglish, "%a, %b %d, %Y, %I:%M:%S %p"},
	{language.BritishEnglish, "%a, %d %b %Y, %H:%M:%S"},
	{language.German, "%a., %d.%m.%Y, %H:%M:%S"},
	{language.French, "%a %d/%m/%Y %H:%M:%S"},
	{language.Japanese, "%Y/%m/%d(%a) %H:%M:%S"},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(localePatterns))
	for i, p := range localePatterns {
		tags[i] = p.tag
	}
	return language.NewMatcher(tags)
}()

// LocalePattern returns the strftime pattern of the locale's date and time
// representation. Empty or unparsable tags get the locale-neutral pattern.
func LocalePattern(locale string) string {
	if locale == "" {
		return localePatterns[0].pattern
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return localePatterns[0].pattern
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return localePatterns[0].pattern
	}
	return localePatterns[idx].pattern
}

// FormatLocale renders d the way the locale renders %c.
func FormatLocale(d DateTime, locale string) string {
	return Strftime(LocalePattern(locale), d)
}
