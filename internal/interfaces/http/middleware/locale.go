package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/webstudio/backend/internal/domain/shared"
)

// LocaleKey is the gin context key holding the negotiated locale
const LocaleKey = "locale"

// LocaleCookie remembers the visitor's language choice
const LocaleCookie = "locale"

// LocaleNegotiator picks a supported locale from an Accept-Language header
type LocaleNegotiator interface {
	Negotiate(acceptLanguage string) shared.Locale
}

// Locale resolves the request language. Precedence: ":locale" path param,
// "lang" query, locale cookie, then Accept-Language.
// An explicit "lang" choice is stored in the cookie for a year.
func Locale(negotiator LocaleNegotiator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(LocaleKey, resolveLocale(c, negotiator).String())
		c.Next()
	}
}

func resolveLocale(c *gin.Context, negotiator LocaleNegotiator) shared.Locale {
	if l, err := shared.ParseLocale(c.Param("locale")); err == nil {
		return l
	}
	if l, err := shared.ParseLocale(c.Query("lang")); err == nil {
		c.SetCookie(LocaleCookie, l.String(), 365*24*3600, "/", "", false, true)
		return l
	}
	if v, err := c.Cookie(LocaleCookie); err == nil {
		if l, err := shared.ParseLocale(v); err == nil {
			return l
		}
	}
	if negotiator != nil {
		return negotiator.Negotiate(c.GetHeader("Accept-Language"))
	}
	return shared.DefaultLocale
}

// GetLocale returns the locale chosen by Locale, or the default
func GetLocale(c *gin.Context) shared.Locale {
	return shared.LocaleOrDefault(c.GetString(LocaleKey))
}
