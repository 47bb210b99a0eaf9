// pkg/extract/chain.go

package extract

import (
	"regexp"

	"fapiao/pkg/utils"
)

// Geometry gives access to page text by region. Coordinates are fractions
// of the page measured from the top-left corner.
type Geometry interface {
	Region(x0, top, x1, bottom float64) string
}

// Input is what every strategy reads: the raw page text, its flattened
// form and the page geometry. Parties holds names resolved so far, so the
// seller strategies can exclude the purchaser.
type Input struct {
	Raw     string
	Flat    string
	Page    Geometry
	Parties Parties
}

// Parties are the resolved counterparty names
type Parties struct {
	Purchaser string
	Seller    string
}

// NewInput prepares page text for the strategies
func NewInput(text string, page Geometry) *Input {
	raw := utils.FoldWidth(utils.NormalizeNewlines(text))
	return &Input{
		Raw:  raw,
		Flat: utils.Flatten(raw),
		Page: page,
	}
}

// region reads a page region, tolerating inputs without geometry
func (in *Input) region(x0, top, x1, bottom float64) string {
	if in.Page == nil {
		return ""
	}
	return in.Page.Region(x0, top, x1, bottom)
}

// Verdict is a field's judgement on a candidate value
type Verdict int

const (
	// Reject discards the candidate and moves on
	Reject Verdict = iota
	// Provisional keeps the candidate only if no later strategy is accepted
	Provisional
	// Accept ends the chain
	Accept
)

// Strategy is one named way of finding a field
type Strategy struct {
	Name string
	Find func(in *Input) (string, bool)
}

// Chain is the ordered list of strategies for one field plus the field's
// validity check. Check may also normalize the value.
type Chain struct {
	Field      string
	Strategies []Strategy
	Check      func(value string) (string, Verdict)
}

// Result is the outcome of running a chain
type Result struct {
	Value    string
	Strategy string
	Found    bool
}

// Run evaluates strategies in order and returns the first accepted value,
// falling back to the first provisional one.
func (c Chain) Run(in *Input) Result {
	var provisional Result
	for _, s := range c.Strategies {
		value, ok := s.Find(in)
		if !ok {
			continue
		}

		verdict := Accept
		if c.Check != nil {
			value, verdict = c.Check(value)
		}

		switch verdict {
		case Accept:
			return Result{Value: value, Strategy: s.Name, Found: true}
		case Provisional:
			if !provisional.Found {
				provisional = Result{Value: value, Strategy: s.Name, Found: true}
			}
		}
	}
	return provisional
}

// firstSubmatch returns the first capture group of re in text
func firstSubmatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}
