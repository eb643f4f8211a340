package printing

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"time"

	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/loan"
	"go.uber.org/zap"
)

//go:embed templates/ticket.html
var ticketTemplate string

// TicketData is what a loan ticket shows
type TicketData struct {
	Record      *customer.Record
	CompanyName string
	PrintedAt   time.Time
}

type ticketView struct {
	TicketData
	LoanType string
	Weights  loan.Weights
}

// TicketPrinter turns a customer record into a printable PDF ticket.
type TicketPrinter struct {
	tmpl     *template.Template
	engine   *TemplateEngine
	renderer PDFRenderer
	paper    PaperSize
	logger   *zap.Logger
}

// NewTicketPrinter creates a printer. It panics if the embedded ticket
// template does not parse.
func NewTicketPrinter(engine *TemplateEngine, renderer PDFRenderer, paper PaperSize, logger *zap.Logger) *TicketPrinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := engine.Parse("ticket", ticketTemplate)
	if err != nil {
		panic(err)
	}
	if !paper.IsValid() {
		paper = PaperSizeA5
	}
	return &TicketPrinter{tmpl: tmpl, engine: engine, renderer: renderer, paper: paper, logger: logger}
}

// HTML renders the ticket page
func (p *TicketPrinter) HTML(data TicketData) (string, error) {
	if data.Record == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "ticket has no customer record", nil)
	}
	if data.PrintedAt.IsZero() {
		data.PrintedAt = time.Now()
	}
	return p.engine.Execute(p.tmpl, ticketView{
		TicketData: data,
		LoanType:   loan.TypeLabel(data.Record.Loan.Type),
		Weights:    loan.TotalWeights(data.Record.Jewels),
	})
}

// Print renders the ticket to PDF
func (p *TicketPrinter) Print(ctx context.Context, data TicketData) ([]byte, error) {
	if p.renderer == nil {
		return nil, ErrPrintingDisabled
	}
	html, err := p.HTML(data)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:      html,
		PaperSize: p.paper,
		Margins:   MarginsFor(p.paper),
		Title:     "Loan ticket " + data.Record.AccNo,
	})
	if err != nil {
		p.logger.Warn("ticket rendering failed", zap.String("acc_no", data.Record.AccNo), zap.Error(err))
		return nil, err
	}
	return result.PDFData, nil
}

// ErrPrintingDisabled is returned when no renderer is configured
var ErrPrintingDisabled = errors.New("ticket printing is not enabled")
