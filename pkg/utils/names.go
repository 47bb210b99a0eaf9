// pkg/utils/names.go

package utils

import (
	"strings"
	"unicode/utf8"
)

// nameArtifacts are label fragments left around a party name by the text
// layer. Multi-rune tokens come first so they are removed whole.
var nameArtifacts = []string{"名称", "购买方", "销售方", "名", "称", "：", ":", "购", "买", "售", "方"}

// nameJunk marks strings that are boilerplate, not a counterparty
var nameJunk = []string{"机器编号", "税务局"}

// minNameRunes is the shortest accepted party name
const minNameRunes = 4

// CleanName strips whitespace and label artifacts from a purchaser or seller
// candidate. It returns false when what is left cannot be a company name.
func CleanName(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	n := Flatten(name)
	for _, token := range nameArtifacts {
		n = strings.ReplaceAll(n, token, "")
	}

	if utf8.RuneCountInString(n) < minNameRunes {
		return "", false
	}
	if IsAllDigits(n) {
		return "", false
	}
	for _, junk := range nameJunk {
		if strings.Contains(n, junk) {
			return "", false
		}
	}
	return n, true
}
