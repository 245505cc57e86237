// Package printing turns invoices and audit reports into PDF files.
//
// A TemplateEngine executes the embedded html/template documents with the
// locale helpers (t, money, date). The HTML goes to a PDFRenderer; the
// ChromedpRenderer prints it in a tab of a shared headless Chrome:
//
//	html, err := engine.Render(TemplateInvoice, data)
//	if err != nil {
//		return err
//	}
//	res, err := renderer.Render(ctx, &RenderRequest{HTML: html, Margin: DocumentMargin})
package printing
