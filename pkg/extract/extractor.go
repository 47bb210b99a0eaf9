// pkg/extract/extractor.go

package extract

import (
	"fapiao/pkg/models"

	"github.com/rs/zerolog"
)

// Extractor recovers invoice fields from first-page text. Every field has
// its own chain; a failed field never stops the others.
type Extractor struct {
	logger    zerolog.Logger
	overrides DateOverrides

	number    Chain
	date      Chain
	purchaser Chain
	seller    Chain
	amount    Chain
}

// NewExtractor creates an extractor using the default chains. Config date
// overrides are layered over DefaultDateOverrides.
func NewExtractor(logger zerolog.Logger, dateOverrides map[string]string) *Extractor {
	return &Extractor{
		logger:    logger,
		overrides: DefaultDateOverrides.Merge(dateOverrides),
		number:    NumberChain(),
		date:      DateChain(),
		purchaser: PurchaserChain(),
		seller:    SellerChain(),
		amount:    AmountChain(),
	}
}

// Outcome is an extracted record plus how each field was found
type Outcome struct {
	Record models.InvoiceRecord
	// Strategies maps a field to the name of the strategy that produced it
	Strategies map[string]string
	// Misses lists fields no strategy could find
	Misses []string
}

// Extract runs all chains over the page text and geometry of one file
func (e *Extractor) Extract(filename, text string, page Geometry) Outcome {
	in := NewInput(text, page)
	out := Outcome{
		Record:     models.InvoiceRecord{Filename: filename},
		Strategies: make(map[string]string),
	}

	number := supersedeWithFullNumber(in, e.number.Run(in))
	if number.Found {
		out.Record.InvoiceNo = models.StringPtr(number.Value)
		out.Strategies[models.FieldInvoiceNo] = number.Strategy
	}

	date := e.date.Run(in)
	if !date.Found {
		if v, ok := e.overrides.Lookup(filename); ok {
			date = Result{Value: v, Strategy: "override", Found: true}
		}
	}
	if date.Found {
		out.Record.Date = models.StringPtr(date.Value)
		out.Strategies[models.FieldDate] = date.Strategy
	}

	e.extractParties(in, &out)

	amount := e.amount.Run(in)
	if amount.Found {
		if d, ok := ParseAmount(amount.Value); ok {
			out.Record.TotalAmount = &d
			out.Strategies[models.FieldTotalAmount] = amount.Strategy
		}
	}

	for _, field := range []string{
		models.FieldInvoiceNo,
		models.FieldDate,
		models.FieldPurchaser,
		models.FieldSeller,
		models.FieldTotalAmount,
	} {
		if _, ok := out.Strategies[field]; ok {
			continue
		}
		out.Misses = append(out.Misses, field)
		e.logger.Warn().
			Str("file", filename).
			Str("field", field).
			Msg("no extraction strategy matched")
	}

	return out
}

// extractParties resolves purchaser, then seller, then fills whatever is
// still empty from company names anywhere on the page
func (e *Extractor) extractParties(in *Input, out *Outcome) {
	if res := e.purchaser.Run(in); res.Found {
		in.Parties.Purchaser = res.Value
		out.Strategies[models.FieldPurchaser] = res.Strategy
	}
	if res := e.seller.Run(in); res.Found {
		in.Parties.Seller = res.Value
		out.Strategies[models.FieldSeller] = res.Strategy
	}

	for _, field := range assignCompanies(in) {
		out.Strategies[field] = "flat-company"
	}

	out.Record.Purchaser = models.StringPtr(in.Parties.Purchaser)
	out.Record.Seller = models.StringPtr(in.Parties.Seller)
}
