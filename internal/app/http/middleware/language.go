package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"langsearch/internal/langfields"
)

const langKey = "lang"

// Language picks the request language:
// 1. ?lang= when it is a well-formed tag (any language, not only supported ones)
// 2. the best supported match for Accept-Language
// 3. the default, which is the first supported language
func Language(supported []string) gin.HandlerFunc {
	tags := make([]language.Tag, 0, len(supported))
	codes := make([]string, 0, len(supported))
	for _, s := range supported {
		code, err := langfields.CanonicalLanguage(s)
		if err != nil {
			continue
		}
		tags = append(tags, language.Make(code))
		codes = append(codes, code)
	}
	if len(tags) == 0 {
		tags = append(tags, language.Make(langfields.DefaultLanguage))
		codes = append(codes, langfields.DefaultLanguage)
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		if q := c.Query(langKey); q != "" {
			if code, err := langfields.CanonicalLanguage(q); err == nil {
				c.Set(langKey, code)
				c.Next()
				return
			}
		}

		lang := codes[0]
		if accept := c.GetHeader("Accept-Language"); accept != "" {
			if prefs, _, err := language.ParseAcceptLanguage(accept); err == nil && len(prefs) > 0 {
				_, idx, conf := matcher.Match(prefs...)
				if conf != language.No && idx < len(codes) {
					lang = codes[idx]
				}
			}
		}
		c.Set(langKey, lang)
		c.Next()
	}
}

// RequestLanguage returns the language chosen by Language, or "" when the
// middleware did not run.
func RequestLanguage(c *gin.Context) string {
	return c.GetString(langKey)
}
