package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/webstudio/backend/internal/domain/shared"
)

// Prompt is a single-turn request to a language model
type Prompt struct {
	System string
	User   string
}

// TextGenerator is implemented by the hosted model adapters
type TextGenerator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

var languageNames = map[shared.Locale]string{
	shared.LocaleCS: "Czech",
	shared.LocaleDE: "German",
	shared.LocaleEN: "English",
}

// BuildDraftPrompt asks for a title line followed by a markdown body in the locale's language
func BuildDraftPrompt(topic string, locale shared.Locale, keywords []string) Prompt {
	lang, ok := languageNames[locale]
	if !ok {
		lang = languageNames[shared.DefaultLocale]
	}

	system := fmt.Sprintf(`You write blog articles for a small web design agency. Write in %s.
Audience: owners of small businesses who are thinking about a new website.
Output format:
- The first line is the article title only, without markdown or quotes.
- Then one empty line.
- Then the article body in Markdown, 600 to 900 words, with "##" subheadings.
- Start the body with a short introductory paragraph. Do not repeat the title.
Be concrete and practical. Do not invent statistics or client names.`, lang)

	var user strings.Builder
	fmt.Fprintf(&user, "Topic: %s\n", strings.TrimSpace(topic))
	if len(keywords) > 0 {
		fmt.Fprintf(&user, "Use these keywords naturally: %s\n", strings.Join(keywords, ", "))
	}
	return Prompt{System: system, User: user.String()}
}

// ParseDraft splits model output into title and body.
// The title is the first non-empty line with markdown heading marks, "Title:" labels and quotes removed.
func ParseDraft(output string) (title, body string, err error) {
	text := strings.ReplaceAll(strings.TrimSpace(output), "\r\n", "\n")
	text = stripCodeFence(text)

	lines := strings.Split(text, "\n")
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return "", "", shared.NewDomainError("EMPTY_GENERATION", "The AI provider returned no text")
	}

	title = cleanTitle(lines[i])
	body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
	if title == "" || body == "" {
		return "", "", shared.NewDomainError("INVALID_GENERATION", "The AI response has no title or body")
	}
	return title, body, nil
}

func cleanTitle(line string) string {
	line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
	for _, label := range []string{"Title:", "Titel:", "Název:", "Nadpis:"} {
		if len(line) >= len(label) && strings.EqualFold(line[:len(label)], label) {
			line = strings.TrimSpace(line[len(label):])
			break
		}
	}
	line = strings.Trim(line, `"'„“”*`)
	return strings.TrimSpace(line)
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
