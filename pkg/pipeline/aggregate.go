// pkg/pipeline/aggregate.go

package pipeline

import (
	"sort"

	"fapiao/pkg/models"
	"fapiao/pkg/utils"

	"github.com/shopspring/decimal"
)

// filenameSeparator joins the files of a merged invoice
const filenameSeparator = ", "

// Aggregate merges records that share an invoice number. Each group takes
// the first record's fields and lists every contributing filename; records
// without a number stay as separate rows. Rows are ordered by quarter, then
// purchaser.
func Aggregate(records []models.InvoiceRecord) []models.AggregatedRecord {
	rows := make([]models.AggregatedRecord, len(records))
	for i, rec := range records {
		rows[i] = newRow(rec)
	}
	return merge(rows)
}

// Reaggregate merges rows from an earlier aggregation again. Counts and
// conflict flags carry over.
func Reaggregate(rows []models.AggregatedRecord) []models.AggregatedRecord {
	return merge(append([]models.AggregatedRecord(nil), rows...))
}

func merge(in []models.AggregatedRecord) []models.AggregatedRecord {
	var (
		rows       []models.AggregatedRecord
		unnumbered []models.AggregatedRecord
		groups     = make(map[string]int)
	)

	for _, src := range in {
		no := models.Deref(src.InvoiceNo)
		if no == "" {
			unnumbered = append(unnumbered, src)
			continue
		}
		if idx, ok := groups[no]; ok {
			mergeInto(&rows[idx], src)
			continue
		}
		groups[no] = len(rows)
		rows = append(rows, src)
	}

	rows = append(rows, unnumbered...)
	for i := range rows {
		rows[i].Quarter = utils.GetQuarter(models.Deref(rows[i].Date))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Quarter != rows[j].Quarter {
			return rows[i].Quarter < rows[j].Quarter
		}
		return models.Deref(rows[i].Purchaser) < models.Deref(rows[j].Purchaser)
	})
	return rows
}

// newRow is the row of a single file
func newRow(rec models.InvoiceRecord) models.AggregatedRecord {
	return models.AggregatedRecord{
		InvoiceNo:   rec.InvoiceNo,
		Purchaser:   rec.Purchaser,
		Seller:      rec.Seller,
		TotalAmount: rec.TotalAmount,
		Date:        rec.Date,
		Count:       1,
		Filename:    rec.Filename,
	}
}

func mergeInto(row *models.AggregatedRecord, src models.AggregatedRecord) {
	row.Filename += filenameSeparator + src.Filename
	row.Count += src.Count
	if src.Conflict || disagrees(*row, src) {
		row.Conflict = true
	}
}

// disagrees reports whether src has a value that differs from the row's.
// A null on either side is not a disagreement.
func disagrees(row, src models.AggregatedRecord) bool {
	return differ(row.Purchaser, src.Purchaser) ||
		differ(row.Seller, src.Seller) ||
		differ(row.Date, src.Date) ||
		(row.TotalAmount != nil && src.TotalAmount != nil && !row.TotalAmount.Equal(*src.TotalAmount))
}

func differ(a, b *string) bool {
	return a != nil && b != nil && *a != *b
}

// Total sums the amounts of rows, skipping nulls
func Total(rows []models.AggregatedRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		if r.TotalAmount != nil {
			sum = sum.Add(*r.TotalAmount)
		}
	}
	return sum
}
