package translate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// amountPattern matches euro amounts like "70,46€", "16 €", "100.50€".
var amountPattern = regexp.MustCompile(`\d+[.,]?\d*\s*€`)

// Amount is one protected euro amount and the placeholder standing in for
// it while text is out for translation.
type Amount struct {
	Placeholder string
	Original    string
}

// ProtectAmounts replaces every euro amount with an opaque placeholder the
// translation provider has no reason to touch. Placeholders number left to
// right, so restoring in order reproduces the original amounts.
func ProtectAmounts(text string) (string, []Amount) {
	var amounts []Amount
	protected := amountPattern.ReplaceAllStringFunc(text, func(match string) string {
		placeholder := fmt.Sprintf("__COST%d__", len(amounts))
		amounts = append(amounts, Amount{Placeholder: placeholder, Original: match})
		return placeholder
	})
	return protected, amounts
}

// RestoreAmounts substitutes the original amounts back for their
// placeholders.
func RestoreAmounts(text string, amounts []Amount) string {
	for _, a := range amounts {
		text = strings.Replace(text, a.Placeholder, a.Original, 1)
	}
	return text
}

// VerifyAmounts reports whether source and translated text carry the same
// multiset of euro amounts. Order may differ; counts may not.
func VerifyAmounts(source, translated string) bool {
	src := amountPattern.FindAllString(source, -1)
	dst := amountPattern.FindAllString(translated, -1)
	if len(src) != len(dst) {
		return false
	}
	sort.Strings(src)
	sort.Strings(dst)
	for i := range src {
		if src[i] != dst[i] {
			return false
		}
	}
	return true
}
