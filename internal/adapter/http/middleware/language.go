package middleware

import (
	"todoapi/pkg/translator"

	"github.com/gin-gonic/gin"
)

const contextKeyLang = "lang"

// LanguageMiddleware resolves Accept-Language to a supported language, falling back to en.
func LanguageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKeyLang, translator.Match(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func GetLang(c *gin.Context) string {
	if lang, exists := c.Get(contextKeyLang); exists {
		if s, ok := lang.(string); ok {
			return s
		}
	}
	return translator.LanguageEn
}
