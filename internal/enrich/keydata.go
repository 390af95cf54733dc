package enrich

import "regexp"

const maxKeyData = 5

// keyDataPatterns are applied in order; their order is the order of the output.
// Group 1 is the figure that gets extracted.
var keyDataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+\.?\d*)\s*亿`),
	regexp.MustCompile(`(\d+\.?\d*)\s*万`),
	regexp.MustCompile(`(\d+\.?\d*)\s*%`),
	regexp.MustCompile(`(\d+)\s*个`),
	regexp.MustCompile(`(\d+)\s*位`),
	regexp.MustCompile(`增长\s*(\d+\.?\d*)\s*%`),
	regexp.MustCompile(`突破\s*(\d+)`),
	regexp.MustCompile(`达到\s*(\d+)`),
}

// ExtractKeyData returns up to five bare figures from text, all matches of the
// first pattern, then the second, and so on. Units are not included ("12.5 亿"
// yields "12.5"). The same figure may appear more than once when several
// patterns cover it.
func ExtractKeyData(text string) []string {
	out := make([]string, 0, maxKeyData)
	for _, re := range keyDataPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, m[1])
			if len(out) == maxKeyData {
				return out
			}
		}
	}
	return out
}
