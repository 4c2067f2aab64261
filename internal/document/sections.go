package document

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxSections caps the number of detected section headings.
const MaxSections = 20

// StandardSections are headings common to scientific papers.
var StandardSections = []string{
	"Abstract", "Introduction", "Background", "Related Work", "Literature Review",
	"Methods", "Methodology", "Materials and Methods", "Experimental Setup",
	"Results", "Experiments", "Evaluation", "Findings",
	"Discussion", "Analysis", "Implications",
	"Conclusion", "Conclusions", "Future Work", "Limitations",
	"References", "Bibliography", "Acknowledgments", "Appendix",
}

type headingPattern struct {
	re       *regexp.Regexp
	numbered bool
}

var headingPatterns = []headingPattern{
	// 1. Introduction, 2.1 Methods
	{regexp.MustCompile(`(?i)^(?P<num>\d+(?:\.\d+)*)\s*\.?\s+(?P<title>[A-Z][A-Za-z\s\-:]+)$`), true},
	// I. Introduction, II. Methods
	{regexp.MustCompile(`(?i)^(?P<num>[IVX]+(?:\.[IVX]+)*)\s*\.?\s+(?P<title>[A-Z][A-Za-z\s\-:]+)$`), true},
	// INTRODUCTION
	{regexp.MustCompile(`(?i)^(?P<title>[A-Z][A-Z\s\-]{2,})$`), false},
	{regexp.MustCompile(`(?i)^(?:\d+\.?\s+)?(?P<title>(?:` + strings.Join(StandardSections, "|") + `))\s*:?\s*$`), false},
	// # Markdown heading
	{regexp.MustCompile(`(?i)^#+\s+(?P<title>.+)$`), false},
}

var leadingNumber = regexp.MustCompile(`^(?:\d+\.?\d*)\s*`)

// DetectSections returns the section headings found in text, at most
// MaxSections. Pattern matching on individual lines is tried first; when it
// finds fewer than three headings a scan for standard section names is used
// instead. Near-duplicate headings are dropped.
func DetectSections(text string) []string {
	lines := strings.Split(text, "\n")
	caser := cases.Title(language.English)

	var found []string
	seen := make(map[string]bool)
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || len(line) > 100 {
			continue
		}

		for _, p := range headingPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			title := strings.TrimSpace(m[p.re.SubexpIndex("title")])
			if n := len(title); n > 2 && n < 50 && looksLikeHeading(lines, i) {
				heading := caser.String(title)
				if p.numbered {
					if num := m[p.re.SubexpIndex("num")]; num != "" {
						heading = num + ". " + heading
					}
				}
				if !seen[heading] {
					seen[heading] = true
					found = append(found, heading)
				}
			}
			break
		}
	}

	if len(found) < 3 {
		found = scanStandardSections(text)
	}

	found = dropSimilar(found)
	if len(found) > MaxSections {
		found = found[:MaxSections]
	}
	return found
}

// looksLikeHeading reports whether the line at i stands apart from body
// text: the previous line is blank or short, or the next line starts a new
// sentence.
func looksLikeHeading(lines []string, i int) bool {
	var prev, next string
	if i > 0 {
		prev = strings.TrimSpace(lines[i-1])
	}
	if i < len(lines)-1 {
		next = strings.TrimSpace(lines[i+1])
	}
	if prev == "" || len(prev) < 10 {
		return true
	}
	if next == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(next)
	return unicode.IsUpper(r) || !unicode.IsLetter(r)
}

func scanStandardSections(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, section := range StandardSections {
		s := strings.ToLower(section)
		variants := []string{
			"\n" + s + "\n",
			"\n" + s + ":",
			"\n" + s + ".",
		}
		for n := 1; n <= 5; n++ {
			variants = append(variants, "\n"+string(rune('0'+n))+". "+s)
		}
		for _, v := range variants {
			if strings.Contains(lower, v) {
				found = append(found, section)
				break
			}
		}
	}
	return found
}

// dropSimilar removes headings that match an earlier heading once numbering
// and case are ignored, including when one contains the other.
func dropSimilar(sections []string) []string {
	normalize := func(s string) string {
		return strings.ToLower(leadingNumber.ReplaceAllString(s, ""))
	}

	var kept []string
	var keptNorm []string
	for _, s := range sections {
		n := normalize(s)
		dup := false
		for _, existing := range keptNorm {
			if n == existing || strings.Contains(existing, n) || strings.Contains(n, existing) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
			keptNorm = append(keptNorm, n)
		}
	}
	return kept
}
