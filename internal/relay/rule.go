package relay

import (
	"regexp"
	"strconv"
)

// tagPattern matches proportion marker tags of the form <word>-p<digits>,
// e.g. "rent-p50". The digit group is the percentage.
var tagPattern = regexp.MustCompile(`^\w+-p(\d+)$`)

// ProportionRule is a single extracted split instruction. It exists only
// transiently between extraction and derivation.
type ProportionRule struct {
	Percentage int
	Tag        string
}

// ExtractRules scans a split's tags for proportion markers. A split may
// carry several markers and yields one rule per marker; a split with none
// yields nil. Pure function over the tag set.
func ExtractRules(s Split) []ProportionRule {
	var rules []ProportionRule
	for _, tag := range s.Tags {
		m := tagPattern.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		pct, err := strconv.Atoi(m[1])
		if err != nil {
			// Unreachable given the pattern, but a bad digit group
			// skips the tag rather than failing the split.
			continue
		}
		rules = append(rules, ProportionRule{Percentage: pct, Tag: tag})
	}
	return rules
}
