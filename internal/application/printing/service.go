package printing

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/webstudio/backend/internal/domain/shared"
	infra "github.com/webstudio/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// ContentTypePDF is the media type of printed documents
const ContentTypePDF = "application/pdf"

// pageFooter prints "page / total" in Chrome's footer template syntax
const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#888;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// DocumentService renders embedded document templates and prints them to PDF
type DocumentService struct {
	engine   *infra.TemplateEngine
	renderer infra.PDFRenderer
	logger   *zap.Logger
}

// NewDocumentService creates a document service
func NewDocumentService(engine *infra.TemplateEngine, renderer infra.PDFRenderer, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		engine:   engine,
		renderer: renderer,
		logger:   logger,
	}
}

// Preview renders a document template to HTML without printing it
func (s *DocumentService) Preview(template string, data any) (string, error) {
	if !s.engine.Has(template) {
		return "", shared.NewDomainError("NOT_FOUND", "Document template not found: "+template)
	}
	html, err := s.engine.Render(template, data)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", template, err)
	}
	return html, nil
}

// PrintPDF renders a document template and prints it
func (s *DocumentService) PrintPDF(ctx context.Context, req PrintRequest) (*Document, error) {
	if s.renderer == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "PDF rendering is not configured")
	}

	html, err := s.Preview(req.Template, req.Data)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:      html,
		Title:     req.Title,
		Paper:     cmp.Or(req.Paper, infra.PaperA4),
		Landscape: req.Landscape,
		Margin:    infra.DocumentMargin,
		Footer:    cmp.Or(req.Footer, pageFooter),
	})
	if err != nil {
		s.logger.Error("PDF rendering failed",
			zap.String("template", req.Template),
			zap.String("title", req.Title),
			zap.Error(err))
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	filename := req.Filename
	if filename == "" {
		filename = sanitizeFilename(req.Title)
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		filename += ".pdf"
	}

	s.logger.Debug("Document printed",
		zap.String("template", req.Template),
		zap.String("filename", filename),
		zap.Int("pages", result.Pages))

	return &Document{
		Filename:    filename,
		ContentType: ContentTypePDF,
		Data:        result.PDF,
		PageCount:   result.Pages,
	}, nil
}

// sanitizeFilename keeps letters, digits, dot, dash and underscore
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
