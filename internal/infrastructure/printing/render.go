package printing

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RenderRequest is one HTML document to print
type RenderRequest struct {
	HTML  string
	Title string

	Paper     Paper
	Landscape bool
	Margin    Margin

	// Header and Footer use Chrome's template markup, e.g. <span class="pageNumber">
	Header string
	Footer string

	// Timeout replaces the renderer default when positive
	Timeout time.Duration
}

// RenderResult is a printed PDF
type RenderResult struct {
	PDF     []byte
	Pages   int
	Elapsed time.Duration
}

// PDFRenderer prints HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// ErrorCode classifies a RenderError
type ErrorCode string

const (
	CodeTimeout    ErrorCode = "RENDER_TIMEOUT"
	CodeFailed     ErrorCode = "RENDER_FAILED"
	CodeBadInput   ErrorCode = "INVALID_INPUT"
	CodeBadPaper   ErrorCode = "INVALID_PAPER"
	CodeNoTemplate ErrorCode = "TEMPLATE_NOT_FOUND"
)

// RenderError is returned by templates and renderers of this package
type RenderError struct {
	Code ErrorCode
	Msg  string
	Err  error
}

// NewRenderError wraps cause, which may be nil
func NewRenderError(code ErrorCode, msg string, cause error) *RenderError {
	return &RenderError{Code: code, Msg: msg, Err: cause}
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// normalize fills defaults and rejects requests that cannot print
func (req *RenderRequest) normalize() error {
	switch {
	case req == nil:
		return NewRenderError(CodeBadInput, "no render request", nil)
	case strings.TrimSpace(req.HTML) == "":
		return NewRenderError(CodeBadInput, "document has no HTML", nil)
	}
	if req.Paper == "" {
		req.Paper = PaperA4
	}
	if _, _, ok := req.Paper.Size(); !ok {
		return NewRenderError(CodeBadPaper, fmt.Sprintf("unknown paper %q", req.Paper), nil)
	}
	if err := req.Margin.Check(); err != nil {
		return NewRenderError(CodeBadInput, "bad margin", err)
	}
	return nil
}
