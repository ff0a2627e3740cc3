package section

import "regexp"

// patternRule is one entry of the §4.6 step-4 rule table: a header whose
// normalized text contains the pattern maps to canonical at the given
// score. Rules are tried in order; first match wins.
type patternRule struct {
	pattern    *regexp.Regexp
	canonical  string
	score      float64
}

var patternTable = []patternRule{
	{regexp.MustCompile(`developer|engineer|analyst|manager|consultant|intern`), Experience, 0.8},
	{regexp.MustCompile(`university|college|bachelor|master|btech|mtech|bsc|msc|phd|degree`), Education, 0.8},
	{regexp.MustCompile(`certifi`), Certifications, 0.8},
	{regexp.MustCompile(`project|portfolio`), Projects, 0.8},
	{regexp.MustCompile(`skill|expertise|proficien|competen`), Skills, 0.75},
	{regexp.MustCompile(`award|honor|achievement|accomplish`), Achievements, 0.7},
	{regexp.MustCompile(`publicat|paper|research`), Publications, 0.7},
	{regexp.MustCompile(`language`), Languages, 0.7},
	{regexp.MustCompile(`volunteer|community`), Volunteer, 0.7},
	{regexp.MustCompile(`hobb|interest`), Hobbies, 0.6},
	{regexp.MustCompile(`referee|reference`), References, 0.65},
	{regexp.MustCompile(`declar`), Declarations, 0.65},
	{regexp.MustCompile(`contact|email|phone|address`), Contact, 0.6},
	{regexp.MustCompile(`summary|profile|objective|about`), Summary, 0.6},
}

// matchPattern returns the first rule in patternTable whose pattern matches
// normalized, or ("", 0, false) if none match.
func matchPattern(normalized string) (string, float64, bool) {
	for _, rule := range patternTable {
		if rule.pattern.MatchString(normalized) {
			return rule.canonical, rule.score, true
		}
	}
	return "", 0, false
}
