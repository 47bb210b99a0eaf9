// cmd/output.go

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"fapiao/pkg/extract"
	"fapiao/pkg/models"
	"fapiao/pkg/pipeline"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// nullCell stands in for a field that was not found
const nullCell = "-"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

func cell(s *string) string {
	if s == nil {
		return nullCell
	}
	return *s
}

func amountCell(d *decimal.Decimal) string {
	if d == nil {
		return nullCell
	}
	return d.StringFixed(2)
}

func printRecords(w io.Writer, records []models.InvoiceRecord) {
	table := newTable(w, []string{"filename", "invoice_no", "date", "purchaser", "seller", "total_amount"})
	for _, r := range records {
		table.Append([]string{
			r.Filename,
			cell(r.InvoiceNo),
			cell(r.Date),
			cell(r.Purchaser),
			cell(r.Seller),
			amountCell(r.TotalAmount),
		})
	}
	table.Render()
}

func printRows(w io.Writer, rows []models.AggregatedRecord) {
	table := newTable(w, []string{"invoice_no", "purchaser", "seller", "total_amount", "date", "quarter", "count", "filename", "conflict"})
	for _, r := range rows {
		conflict := ""
		if r.Conflict {
			conflict = "yes"
		}
		table.Append([]string{
			cell(r.InvoiceNo),
			cell(r.Purchaser),
			cell(r.Seller),
			amountCell(r.TotalAmount),
			cell(r.Date),
			r.Quarter,
			strconv.Itoa(r.Count),
			r.Filename,
			conflict,
		})
	}
	table.SetFooter([]string{"", "", "total", totalAmount(rows), "", "", "", "", ""})
	table.Render()
}

func totalAmount(rows []models.AggregatedRecord) string {
	return pipeline.Total(rows).StringFixed(2)
}

func printInspection(w io.Writer, raw, flat string, out extract.Outcome) {
	fmt.Fprintf(w, "== %s ==\n\n-- text --\n%s\n\n-- flattened --\n%s\n\n", out.Record.Filename, raw, flat)

	rec := out.Record
	values := map[string]string{
		models.FieldInvoiceNo:   cell(rec.InvoiceNo),
		models.FieldDate:        cell(rec.Date),
		models.FieldPurchaser:   cell(rec.Purchaser),
		models.FieldSeller:      cell(rec.Seller),
		models.FieldTotalAmount: amountCell(rec.TotalAmount),
	}
	fields := make([]string, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	table := newTable(w, []string{"field", "value", "strategy"})
	for _, f := range fields {
		strategy, ok := out.Strategies[f]
		if !ok {
			strategy = nullCell
		}
		table.Append([]string{f, values[f], strategy})
	}
	table.Render()
}

func printErrors(w io.Writer, rows []models.ProcessingError) {
	table := newTable(w, []string{"created_at", "scan_id", "source", "error_type", "message"})
	for _, e := range rows {
		table.Append([]string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.ScanID,
			e.Source,
			e.ErrorType,
			e.Message,
		})
	}
	table.Render()
}
