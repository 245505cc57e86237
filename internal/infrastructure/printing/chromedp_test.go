package printing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, defaultScale, r.config.Scale)
	assert.Equal(t, defaultMaxParallel, cap(r.slots))
	assert.NotNil(t, r.logger)
	assert.NoError(t, r.Close())
}

func TestPrintParams_A4(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})

	p := r.printParams(&RenderRequest{HTML: "<p>x</p>", Paper: PaperA4, Margin: DocumentMargin})

	assert.InDelta(t, 8.27, p.PaperWidth, 0.01)
	assert.InDelta(t, 11.69, p.PaperHeight, 0.01)
	assert.InDelta(t, inches(15), p.MarginTop, 0.001)
	assert.False(t, p.Landscape)
	assert.True(t, p.PrintBackground)
	assert.False(t, p.DisplayHeaderFooter)
}

func TestPrintParams_LandscapeLetterScaled(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{Scale: 0.9})

	p := r.printParams(&RenderRequest{Paper: PaperLetter, Landscape: true})

	assert.True(t, p.Landscape)
	assert.InDelta(t, 8.5, p.PaperWidth, 0.001)
	assert.Equal(t, 0.9, p.Scale)
}

func TestPrintParams_FooterNeedsClearance(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})

	p := r.printParams(&RenderRequest{
		Paper:  PaperA4,
		Margin: Even(2),
		Footer: `<span class="pageNumber"></span>`,
	})

	assert.True(t, p.DisplayHeaderFooter)
	assert.InDelta(t, inches(2), p.MarginTop, 0.001)
	assert.InDelta(t, inches(headerClearance), p.MarginBottom, 0.001)
	assert.Contains(t, p.FooterTemplate, "pageNumber")
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapDocument(full, "ignored"))

	page := wrapDocument("<p>Audit</p>", "Müller & Söhne")
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `<meta charset="UTF-8">`)
	assert.Contains(t, page, "<title>Müller &amp; Söhne</title>")
	assert.Contains(t, page, "<body><p>Audit</p></body>")
}

func TestChromedpRenderer_RejectsBadRequests(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})
	defer r.Close()

	tests := []struct {
		name string
		req  *RenderRequest
		code ErrorCode
	}{
		{"nil", nil, CodeBadInput},
		{"blank html", &RenderRequest{HTML: "  "}, CodeBadInput},
		{"unknown paper", &RenderRequest{HTML: "<p>x</p>", Paper: "B5"}, CodeBadPaper},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(context.Background(), tt.req)
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, tt.code, renderErr.Code)
		})
	}
}

func TestChromedpRenderer_WaitsForFreeSlot(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{MaxParallel: 1})
	r.slots <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Render(ctx, &RenderRequest{HTML: "<p>x</p>"})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, CodeTimeout, renderErr.Code)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCountPages(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Kids [...] >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 1, countPages([]byte("%PDF-1.4")))
}
