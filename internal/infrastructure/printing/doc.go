// Package printing renders loan tickets to PDF.
//
// A ticket is an HTML page built from a customer record by TemplateEngine
// and printed by a PDFRenderer. ChromedpRenderer drives a local or remote
// Chrome through the DevTools protocol:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://chrome:9222"})
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//
//	printer := NewTicketPrinter(NewTemplateEngine(), renderer, PaperSizeA5, logger)
//	pdf, err := printer.Print(ctx, TicketData{Record: rec, CompanyName: "Sri Finance"})
package printing
