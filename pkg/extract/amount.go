// pkg/extract/amount.go

package extract

import (
	"regexp"
	"strings"

	"fapiao/pkg/models"
	"fapiao/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	numericAmountRegex  = regexp.MustCompile(`小\s*写.*?[¥￥]?\s*([\d,]+\.?\d*)`)
	taxTotalRegex       = regexp.MustCompile(`价\s*税\s*合\s*计.*?[¥￥]?\s*([\d,]+\.?\d*)`)
	flatTotalRegex      = regexp.MustCompile(`(?:小写|价税合计)\D{0,50}([¥￥]?\d+\.?\d{2})`)
	chineseNumeralRegex = regexp.MustCompile(`[壹贰叁肆伍陆柒捌玖拾佰仟万亿圆角分整]{2,}\D{0,10}([¥￥]?\d+\.?\d{2})`)
)

// writtenAmountMarker labels the amount spelled out in Chinese numerals
const writtenAmountMarker = "大写"

// MaxAmount is the exclusive upper bound of a plausible invoice total. Larger
// values come from digits of neighbouring fields run together.
var MaxAmount = decimal.NewFromInt(100_000_000)

// AmountChain finds the total amount including tax
func AmountChain() Chain {
	return Chain{
		Field: models.FieldTotalAmount,
		Strategies: []Strategy{
			{Name: "numeric-label", Find: amountNumericLabel},
			{Name: "tax-total", Find: amountTaxTotal},
			{Name: "flat-label", Find: amountFlatLabel},
			{Name: "chinese-numerals", Find: amountChineseNumerals},
		},
		Check: checkAmount,
	}
}

// ParseAmount parses a captured amount. Values outside [0, MaxAmount) are
// rejected.
func ParseAmount(v string) (decimal.Decimal, bool) {
	cleaned := utils.CleanAmount(v)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if d.IsNegative() || !d.LessThan(MaxAmount) {
		return decimal.Zero, false
	}
	return d, true
}

func checkAmount(v string) (string, Verdict) {
	if _, ok := ParseAmount(v); !ok {
		return "", Reject
	}
	return utils.CleanAmount(v), Accept
}

func amountNumericLabel(in *Input) (string, bool) {
	return firstSubmatch(numericAmountRegex, in.Raw)
}

// amountTaxTotal skips a match that runs through the written-amount label,
// which would capture digits printed after the spelled-out total
func amountTaxTotal(in *Input) (string, bool) {
	m := taxTotalRegex.FindStringSubmatch(in.Raw)
	if len(m) < 2 || strings.Contains(m[0], writtenAmountMarker) {
		return "", false
	}
	return m[1], true
}

func amountFlatLabel(in *Input) (string, bool) {
	return firstSubmatch(flatTotalRegex, in.Flat)
}

func amountChineseNumerals(in *Input) (string, bool) {
	return firstSubmatch(chineseNumeralRegex, in.Flat)
}
