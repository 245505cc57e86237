package outreach

import (
	"fmt"
	"time"

	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/outreach"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/i18n"
	infra "github.com/webstudio/backend/internal/infrastructure/printing"
)

// issuesShown is how many findings a message lists
const issuesShown = 3

// Translator looks up localized phrases
type Translator interface {
	T(locale shared.Locale, key string, args ...i18n.Args) string
}

// HTMLRenderer executes a named document template
type HTMLRenderer interface {
	Render(name string, data any) (string, error)
}

// composer turns an audit into channel specific texts
type composer struct {
	phrases Translator
	html    HTMLRenderer
	agency  infra.Party
}

type composed struct {
	subject string
	body    string
}

func phraseKey(channel outreach.Channel, band outreach.Band, variant int, name string) string {
	return fmt.Sprintf("outreach.%s.%s.v%d.%s", channel, band, variant, name)
}

func (c *composer) args(a *audit.WebsiteAudit, locale shared.Locale) i18n.Args {
	args := i18n.Args{
		"domain":      a.Domain,
		"overall":     a.OverallScore,
		"grade":       a.Grade,
		"seo":         a.SEOScore,
		"performance": a.PerformanceScore,
		"mobile":      a.MobileScore,
		"agency":      c.agency.Name,
		"phone":       c.agency.Phone,
		"email":       c.agency.Email,
		"company":     a.Prospect.CompanyName,
		"top_issue":   "",
	}
	if top := a.Result().TopIssues(1); len(top) > 0 {
		args["top_issue"] = c.issueText(locale, top[0])
	}
	return args
}

func (c *composer) issueText(locale shared.Locale, issue audit.Issue) string {
	return c.phrases.T(locale, "audit.issue."+issue.Code)
}

func (c *composer) topIssues(a *audit.WebsiteAudit, locale shared.Locale) []string {
	top := a.Result().TopIssues(issuesShown)
	out := make([]string, len(top))
	for i, issue := range top {
		out[i] = c.issueText(locale, issue)
	}
	return out
}

func (c *composer) compose(a *audit.WebsiteAudit, channel outreach.Channel, band outreach.Band, variant int, locale shared.Locale, generatedAt time.Time) (composed, error) {
	args := c.args(a, locale)
	switch channel {
	case outreach.ChannelEmail:
		return c.email(a, band, variant, locale, args)
	case outreach.ChannelWhatsApp:
		return composed{body: c.phrases.T(locale, phraseKey(channel, band, variant, "text"), args)}, nil
	case outreach.ChannelPDF:
		body, err := c.html.Render(infra.TemplateAuditReport, c.report(a, band, variant, locale, generatedAt))
		if err != nil {
			return composed{}, err
		}
		return composed{subject: c.phrases.T(locale, "outreach.pdf.title", args), body: body}, nil
	}
	return composed{}, shared.NewDomainError("INVALID_CHANNEL", "Channel must be email, whatsapp or pdf")
}

func (c *composer) email(a *audit.WebsiteAudit, band outreach.Band, variant int, locale shared.Locale, args i18n.Args) (composed, error) {
	greeting := c.phrases.T(locale, "outreach.greeting")
	if a.Prospect.CompanyName != "" {
		greeting = c.phrases.T(locale, "outreach.greeting_company", args)
	}
	doc := infra.OutreachEmailDocument{
		Locale:    locale,
		Subject:   c.phrases.T(locale, phraseKey(outreach.ChannelEmail, band, variant, "subject"), args),
		Greeting:  greeting,
		Intro:     c.phrases.T(locale, phraseKey(outreach.ChannelEmail, band, variant, "intro"), args),
		Heading:   c.phrases.T(locale, "outreach.issues_heading"),
		Issues:    c.topIssues(a, locale),
		Scores:    c.phrases.T(locale, "outreach.scores", args),
		Closing:   c.phrases.T(locale, phraseKey(outreach.ChannelEmail, band, variant, "closing"), args),
		Signature: c.phrases.T(locale, "outreach.signature", args),
	}
	body, err := c.html.Render(infra.TemplateOutreachEmail, doc)
	if err != nil {
		return composed{}, err
	}
	return composed{subject: doc.Subject, body: body}, nil
}

func (c *composer) report(a *audit.WebsiteAudit, band outreach.Band, variant int, locale shared.Locale, generatedAt time.Time) infra.AuditReportDocument {
	return infra.AuditReportDocument{
		Locale:      locale,
		Agency:      c.agency,
		Audit:       a,
		Band:        string(band),
		Variant:     variant,
		GeneratedAt: generatedAt,
	}
}
