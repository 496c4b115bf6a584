// Package profile extracts structured candidate data from resume text and
// catalogs it in MySQL and, optionally, a Neo4j skill graph. Extraction is
// intentionally regex-based: it is cheap enough to run on every indexed file
// and good enough to enrich match results and power skill lookups.
package profile

import (
	"regexp"
	"strings"
)

// Profile is the structured data pulled out of a resume's plain text.
type Profile struct {
	Name       string   `json:"name"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
}

// UnknownCandidate is reported when no capitalized name is found on the
// first line of the resume.
const UnknownCandidate = "Unknown Candidate"

// NotSpecified is reported when the text never states years of experience.
const NotSpecified = "Not specified"

// skillVocabulary is the fixed list of terms the extractor scans for. Terms
// are matched case-insensitively between word boundaries, so "java" does not
// match inside "javascript".
var skillVocabulary = []string{
	"python", "java", "c++", "c#", "javascript", "typescript",
	"react", "angular", "vue", "nodejs", "express", "django", "flask",
	"fastapi", "ruby", "rails", "php", "laravel", "sql", "mysql",
	"postgresql", "mongodb", "redis", "docker", "kubernetes", "aws",
	"azure", "gcp", "terraform", "ansible", "jenkins", "git", "jira",
	"scrum", "agile", "machine learning", "deep learning", "tensorflow",
	"pytorch", "scikit-learn", "pandas", "numpy", "data analysis",
	"data science", "natural language processing", "computer vision",
	"html", "css", "tailwind", "bootstrap",
}

var (
	// namePattern matches one to three capitalized words at the start of the
	// first line, the usual shape of a resume header.
	namePattern = regexp.MustCompile(`^[A-Z][a-z]+(?: [A-Z][a-z]+(?: [A-Z][a-z]+)?)?`)

	// experiencePattern captures the number of years; a trailing "+" in the
	// text is absorbed so "5+ years of experience" captures just "5".
	experiencePattern = regexp.MustCompile(`(?i)(\d+)\+?\s*years? of experience`)

	skillPatterns = compileSkillPatterns()
)

func compileSkillPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(skillVocabulary))
	for i, skill := range skillVocabulary {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`)
	}
	return patterns
}

// Extract pulls the candidate name, known skills and stated years of
// experience out of resume text. It never fails: fields that cannot be
// found get their fallback values and Skills stays empty.
func Extract(text string) Profile {
	p := Profile{
		Name:       UnknownCandidate,
		Skills:     []string{},
		Experience: NotSpecified,
	}

	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	if name := namePattern.FindString(firstLine); name != "" {
		p.Name = name
	}

	for i, pattern := range skillPatterns {
		if pattern.MatchString(text) {
			p.Skills = append(p.Skills, capitalize(skillVocabulary[i]))
		}
	}

	if m := experiencePattern.FindStringSubmatch(text); m != nil {
		p.Experience = m[1] + "+ years"
	}

	return p
}

// capitalize upper-cases the first character and lower-cases the rest,
// mirroring how the skill names are presented in match results.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
