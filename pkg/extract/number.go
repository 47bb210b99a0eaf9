// pkg/extract/number.go

package extract

import (
	"regexp"
	"strings"

	"fapiao/pkg/models"
	"fapiao/pkg/utils"
)

var (
	labeledNumberRegex = regexp.MustCompile(`发票号码[:：]?\s*(\d{20}|\d{8,12})`)
	accountNumberRegex = regexp.MustCompile(`客户账号[:：]?\s*(\d+)`)
	groupNumberRegex   = regexp.MustCompile(`集团编号[:：]?\s*(\d+)`)
	genericNumberRegex = regexp.MustCompile(`号码[:：]?(\d{8,20})`)
	monitorNumberRegex = regexp.MustCompile(`监\s*(\d{8})\b`)
	looseNumberRegex   = regexp.MustCompile(`\b(\d{8})\b`)
	fullNumberRegex    = regexp.MustCompile(`\b\d{20}\b`)
)

// legacyCodePrefix starts the 12-digit invoice codes of older paper
// invoices, which sit next to the real number and are easy to mistake for it.
const legacyCodePrefix = "0440"

// fullNumberMinLen: a held number shorter than this yields to any 20-digit
// number on the page
const fullNumberMinLen = 10

// NumberChain finds the invoice number
func NumberChain() Chain {
	return Chain{
		Field: models.FieldInvoiceNo,
		Strategies: []Strategy{
			{Name: "labeled", Find: numberLabeled},
			{Name: "customer-account", Find: numberCustomerAccount},
			{Name: "group-id", Find: numberGroupID},
			{Name: "generic-label", Find: numberGenericLabel},
			{Name: "monitor-mark", Find: numberMonitorMark},
			{Name: "loose-8-digit", Find: numberLoose},
		},
		Check: checkNumber,
	}
}

// checkNumber accepts digit strings. Values shaped like a legacy invoice
// code are provisional.
func checkNumber(v string) (string, Verdict) {
	if !utils.IsAllDigits(v) {
		return "", Reject
	}
	if strings.HasPrefix(v, legacyCodePrefix) || (len(v) == 12 && strings.HasPrefix(v, "0")) {
		return v, Provisional
	}
	return v, Accept
}

func numberLabeled(in *Input) (string, bool) {
	return firstSubmatch(labeledNumberRegex, in.Flat)
}

// numberCustomerAccount covers carrier statements, which carry an account
// number instead of an invoice number
func numberCustomerAccount(in *Input) (string, bool) {
	return firstSubmatch(accountNumberRegex, in.Flat)
}

func numberGroupID(in *Input) (string, bool) {
	return firstSubmatch(groupNumberRegex, in.Flat)
}

func numberGenericLabel(in *Input) (string, bool) {
	v, ok := firstSubmatch(genericNumberRegex, in.Flat)
	if !ok || len(v) < 8 {
		return "", false
	}
	return v, true
}

func numberMonitorMark(in *Input) (string, bool) {
	return firstSubmatch(monitorNumberRegex, in.Raw)
}

// numberLoose takes any standalone 8-digit number that does not look like
// the start of a year
func numberLoose(in *Input) (string, bool) {
	for _, m := range looseNumberRegex.FindAllStringSubmatch(in.Raw, -1) {
		if strings.HasPrefix(m[1], "202") {
			continue
		}
		return m[1], true
	}
	return "", false
}

// supersedeWithFullNumber replaces a missing or short number with the first
// standalone 20-digit number of a digital invoice
func supersedeWithFullNumber(in *Input, res Result) Result {
	if res.Found && len(res.Value) >= fullNumberMinLen {
		return res
	}
	if n := fullNumberRegex.FindString(in.Raw); n != "" {
		return Result{Value: n, Strategy: "twenty-digit", Found: true}
	}
	return res
}
