// pkg/extract/date.go

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"fapiao/pkg/models"
	"fapiao/pkg/utils"
)

var (
	labeledDateRegex = regexp.MustCompile(`开\s*票\s*日\s*期[:：]\s*(\S+)`)
	leadingDateRegex = regexp.MustCompile(`^(\d{4})[-年](\d{1,2})[-月](\d{1,2})`)
	flatCNDateRegex  = regexp.MustCompile(`(20\d{2})年(\d{1,2})月(\d{1,2})日`)
	compactDateRegex = regexp.MustCompile(`20\d{6}`)
	contextDateRegex = regexp.MustCompile(`开票日期[:：]?\D{0,15}(20\d{2}\s*\d{1,2}\s*\d{1,2})`)
	digitDNARegex    = regexp.MustCompile(`(20[23]\d)(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])`)
	anyYearDateRegex = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
)

// minDateRunes is the shortest string still taken for a date
const minDateRunes = 6

// DateChain finds the issue date
func DateChain() Chain {
	return Chain{
		Field: models.FieldDate,
		Strategies: []Strategy{
			{Name: "labeled", Find: dateLabeled},
			{Name: "flat-cn", Find: dateFlatCN},
			{Name: "compact-8-digit", Find: dateCompact},
			{Name: "label-context", Find: dateLabelContext},
			{Name: "digit-dna", Find: dateDigitDNA},
			{Name: "any-year-cn", Find: dateAnyYear},
		},
		Check: checkDate,
	}
}

// checkDate reformats space-separated dates and rejects values too short or
// without digits to be a date
func checkDate(v string) (string, Verdict) {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, " \t") {
		if parts := strings.Fields(v); len(parts) == 3 {
			v = utils.FormatDateParts(parts[0], parts[1], parts[2])
		}
	}
	if utf8.RuneCountInString(v) < minDateRunes || !utils.ContainsDigits(v) {
		return "", Reject
	}
	return v, Accept
}

// dateLabeled reads the token after 开票日期 as YYYY年MM月DD日 or YYYY-MM-DD
func dateLabeled(in *Input) (string, bool) {
	token, ok := firstSubmatch(labeledDateRegex, in.Raw)
	if !ok {
		return "", false
	}

	if t, err := utils.ParseDate(token); err == nil {
		return utils.CanonicalDate(t), true
	}

	// The token may run into whatever follows the date on the same line
	m := leadingDateRegex.FindStringSubmatch(utils.NormalizeDateSeparators(token))
	if m == nil {
		return "", false
	}
	canonical := utils.FormatDateParts(m[1], m[2], m[3])
	if _, err := utils.ParseDate(canonical); err != nil {
		return "", false
	}
	return canonical, true
}

func dateFlatCN(in *Input) (string, bool) {
	m := flatCNDateRegex.FindStringSubmatch(in.Flat)
	if m == nil {
		return "", false
	}
	return utils.FormatDateParts(m[1], m[2], m[3]), true
}

// dateCompact takes the first 20xxMMDD run with a plausible month and day
func dateCompact(in *Input) (string, bool) {
	for _, d := range compactDateRegex.FindAllString(in.Flat, -1) {
		if validMonthDay(d[4:6], d[6:8]) {
			return d[:4] + "年" + d[4:6] + "月" + d[6:8] + "日", true
		}
	}
	return "", false
}

// dateLabelContext allows a few stray characters between the label and a
// spaced-out 8-digit date
func dateLabelContext(in *Input) (string, bool) {
	v, ok := firstSubmatch(contextDateRegex, in.Raw)
	if !ok {
		return "", false
	}
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ReplaceAll(v, "\t", "")
	if len(v) != 8 {
		return "", false
	}
	return v[:4] + "年" + v[4:6] + "月" + v[6:] + "日", true
}

// dateDigitDNA joins every digit on the page and looks for a 2020s date. It
// survives text layers that emit one character per line or word.
func dateDigitDNA(in *Input) (string, bool) {
	m := digitDNARegex.FindStringSubmatch(utils.DigitsOnly(in.Raw))
	if m == nil {
		return "", false
	}
	return m[1] + "年" + m[2] + "月" + m[3] + "日", true
}

func dateAnyYear(in *Input) (string, bool) {
	m := anyYearDateRegex.FindStringSubmatch(in.Raw)
	if m == nil {
		return "", false
	}
	return utils.FormatDateParts(m[1], m[2], m[3]), true
}

func validMonthDay(month, day string) bool {
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errM != nil || errD != nil {
		return false
	}
	return m >= 1 && m <= 12 && d >= 1 && d <= 31
}
