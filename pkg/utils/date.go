// pkg/utils/date.go

package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fapiao/pkg/models"
)

const (
	layoutCN   = "2006年1月2日"
	layoutDash = "2006-1-2"
)

// embeddedDateRegex finds a YYYY<sep>MM<sep>DD triple inside a longer string
var embeddedDateRegex = regexp.MustCompile(`(\d{4})[-年](\d{1,2})[-月](\d{1,2})`)

// NormalizeDateSeparators rewrites slashes and dots as dashes
func NormalizeDateSeparators(s string) string {
	return strings.NewReplacer("/", "-", ".", "-").Replace(s)
}

// ParseDate parses s strictly as YYYY年MM月DD日 when it carries the year
// marker, otherwise as YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = NormalizeDateSeparators(strings.TrimSpace(s))
	if strings.Contains(s, "年") {
		return time.Parse(layoutCN, s)
	}
	return time.Parse(layoutDash, s)
}

// CanonicalDate formats t as YYYY年MM月DD日
func CanonicalDate(t time.Time) string {
	return fmt.Sprintf("%04d年%02d月%02d日", t.Year(), int(t.Month()), t.Day())
}

// FormatDateParts builds the canonical form from raw year, month and day
// digits, zero-padding month and day.
func FormatDateParts(year, month, day string) string {
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errM != nil || errD != nil {
		return year + "年" + month + "月" + day + "日"
	}
	return fmt.Sprintf("%s年%02d月%02d日", year, m, d)
}

// GetQuarter maps a date string to its YYYY-Qn bucket, or to
// models.QuarterUnknown when no date can be read from it.
func GetQuarter(date string) string {
	if strings.TrimSpace(date) == "" {
		return models.QuarterUnknown
	}

	if t, err := ParseDate(date); err == nil {
		return quarterLabel(t.Year(), int(t.Month()))
	}

	matches := embeddedDateRegex.FindStringSubmatch(NormalizeDateSeparators(date))
	if len(matches) < 4 {
		return models.QuarterUnknown
	}
	year, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	if month < 1 || month > 12 {
		return models.QuarterUnknown
	}
	return quarterLabel(year, month)
}

func quarterLabel(year, month int) string {
	return fmt.Sprintf("%d-Q%d", year, (month-1)/3+1)
}
