package printing

import (
	infra "github.com/webstudio/backend/internal/infrastructure/printing"
)

// PrintRequest selects a document template and the data bound to it
type PrintRequest struct {
	Template string
	Data     any
	// Title is written to the PDF metadata
	Title string
	// Filename is suggested to browsers downloading the PDF
	Filename string
	// Paper defaults to A4
	Paper     infra.Paper
	Landscape bool
	// Footer replaces the page counter printed at the bottom of every page
	Footer string
}

// Document is a rendered PDF file
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	PageCount   int
}

// Size returns the document size in bytes
func (d *Document) Size() int {
	return len(d.Data)
}
