// pkg/extract/names.go

package extract

import (
	"regexp"
	"strings"

	"fapiao/pkg/models"
	"fapiao/pkg/utils"
)

var (
	flatPurchaserRegex = regexp.MustCompile(`(?:购)?名称[:：](.+?)(?:销|售|卖|纳税|统一|地址|开户)`)
	flatSellerRegex    = regexp.MustCompile(`(?:销|售)名称[:：](.+?)(?:买售|纳税|统一|地址|开户|复核|开票)`)
	strictNameRegex    = regexp.MustCompile(`名\s*称\s*[:：]\s*([^\s]+)`)
	looseNameRegex     = regexp.MustCompile(`名\s*称\s*[:：]?\s+([^\s:：]+)`)
	regionCompanyRegex = regexp.MustCompile(`([^\n]{2,30}公司)`)
	bottomCompanyRegex = regexp.MustCompile(`([^\n]{4,30}公司)`)
	flatCompanyRegex   = regexp.MustCompile(`([\x{4e00}-\x{9fa5}()（）]{4,20}公司)`)
)

// consultingMarker flags consulting firms; two of them on one invoice are
// almost always the same party printed twice
const consultingMarker = "咨询"

// Page regions, as fractions of the page from the top-left corner
var (
	purchaserBox = [4]float64{0, 0.15, 0.55, 0.60}
	sellerBox    = [4]float64{0.45, 0.15, 1, 0.60}
	bottomBox    = [4]float64{0, 0.60, 1, 0.95}
)

// PurchaserChain finds the buyer's name
func PurchaserChain() Chain {
	return Chain{
		Field: models.FieldPurchaser,
		Strategies: []Strategy{
			{Name: "flat-label", Find: purchaserFlatLabel},
			{Name: "label-first", Find: nthLabel(strictNameRegex, 0)},
			{Name: "loose-label-first", Find: nthLabel(looseNameRegex, 0)},
			{Name: "region-left", Find: purchaserRegion},
		},
		Check: checkName,
	}
}

// SellerChain finds the seller's name. It runs after the purchaser chain so
// the spatial strategies can skip the purchaser.
func SellerChain() Chain {
	return Chain{
		Field: models.FieldSeller,
		Strategies: []Strategy{
			{Name: "flat-label", Find: sellerFlatLabel},
			{Name: "label-second", Find: nthLabel(strictNameRegex, 1)},
			{Name: "loose-label-second", Find: nthLabel(looseNameRegex, 1)},
			{Name: "region-right", Find: sellerRegion},
			{Name: "region-bottom", Find: sellerBottomRegion},
		},
		Check: checkName,
	}
}

func checkName(v string) (string, Verdict) {
	name, ok := utils.CleanName(v)
	if !ok {
		return "", Reject
	}
	return name, Accept
}

func purchaserFlatLabel(in *Input) (string, bool) {
	return firstSubmatch(flatPurchaserRegex, in.Flat)
}

func sellerFlatLabel(in *Input) (string, bool) {
	return firstSubmatch(flatSellerRegex, in.Flat)
}

// nthLabel takes the n-th 名称 value on the raw text. Labels appear in
// purchaser-then-seller order on every known layout.
func nthLabel(re *regexp.Regexp, n int) func(in *Input) (string, bool) {
	return func(in *Input) (string, bool) {
		matches := re.FindAllStringSubmatch(in.Raw, -1)
		if len(matches) <= n {
			return "", false
		}
		return matches[n][1], true
	}
}

func purchaserRegion(in *Input) (string, bool) {
	text := in.region(purchaserBox[0], purchaserBox[1], purchaserBox[2], purchaserBox[3])
	v, ok := firstSubmatch(regionCompanyRegex, text)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func sellerRegion(in *Input) (string, bool) {
	text := in.region(sellerBox[0], sellerBox[1], sellerBox[2], sellerBox[3])
	v, ok := firstSubmatch(regionCompanyRegex, text)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if overlaps(in.Parties.Purchaser, v) {
		return "", false
	}
	return v, true
}

func sellerBottomRegion(in *Input) (string, bool) {
	text := in.region(bottomBox[0], bottomBox[1], bottomBox[2], bottomBox[3])
	for _, m := range bottomCompanyRegex.FindAllStringSubmatch(text, -1) {
		v := strings.TrimSpace(m[1])
		if overlaps(in.Parties.Purchaser, v) || bothConsulting(in.Parties.Purchaser, v) {
			continue
		}
		return v, true
	}
	return "", false
}

// assignCompanies is the last resort: every 公司 name in the flattened text,
// first unused candidate to whichever party is still empty. It returns the
// parties that were filled.
func assignCompanies(in *Input) (filled []string) {
	if in.Parties.Purchaser != "" && in.Parties.Seller != "" {
		return nil
	}

	for _, cand := range flatCompanyRegex.FindAllString(in.Flat, -1) {
		switch {
		case in.Parties.Purchaser == "":
			if overlaps(in.Parties.Seller, cand) || bothConsulting(in.Parties.Seller, cand) {
				continue
			}
			in.Parties.Purchaser = cand
			filled = append(filled, models.FieldPurchaser)
		case in.Parties.Seller == "":
			if overlaps(in.Parties.Purchaser, cand) || bothConsulting(in.Parties.Purchaser, cand) {
				continue
			}
			in.Parties.Seller = cand
			filled = append(filled, models.FieldSeller)
		}
		if in.Parties.Purchaser != "" && in.Parties.Seller != "" {
			break
		}
	}
	return filled
}

// overlaps reports whether cand duplicates, or is part of, the other
// party's cleaned name
func overlaps(other, cand string) bool {
	if other == "" {
		return false
	}
	if clean, ok := utils.CleanName(cand); ok {
		cand = clean
	}
	return strings.Contains(other, cand)
}

func bothConsulting(other, cand string) bool {
	return other != "" && strings.Contains(other, consultingMarker) && strings.Contains(cand, consultingMarker)
}
