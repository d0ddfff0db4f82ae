package usecase

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var invoiceTemplate = template.Must(template.New("invoice.html").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(o *domain.Order) string { return o.CreatedAt.UTC().Format("02 Jan 2006") },
}).ParseFS(templateFS, "templates/invoice.html"))

func renderInvoice(w io.Writer, order *domain.Order) error {
	if err := invoiceTemplate.Execute(w, order); err != nil {
		return fmt.Errorf("rendering invoice: %w", err)
	}
	return nil
}
