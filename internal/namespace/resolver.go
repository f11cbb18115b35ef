package namespace

import "strings"

// Keyword tables used for automatic namespace resolution. Kept as data so
// they can be unit-tested and extended without touching control flow.
var (
	preschoolKeywords = []string{
		"preschool", "pre-school", "daycare", "nursery", "toddler",
		"early childhood", "kindergarten prep", "play-based learning",
		"ages 3-5", "pre-k", "infant", "baby", "developmental milestone",
	}

	k12AcademicKeywords = []string{
		"curriculum", "lesson plan", "grade", "subject", "math", "science",
		"english", "history", "geography", "physics", "chemistry", "biology",
		"algebra", "geometry", "calculus", "literature", "writing", "reading",
		"assessment", "exam", "test", "homework", "assignment", "high school",
		"middle school", "elementary", "standards", "learning objective",
	}

	adminKeywords = []string{
		"policy", "procedure", "admin", "management", "staff", "employee",
		"hr", "human resources", "finance", "budget", "compliance", "audit",
		"legal", "contract", "agreement", "governance", "operations", "facility",
		"maintenance", "safety protocol", "emergency procedure",
	}
)

// Resolve picks the namespace to search when the caller did not supply one.
// It scores the query against the keyword tables above: preschool cues win
// outright, administrative cues beat academic ones, and curriculum questions
// default to the middle school program namespace.
func Resolve(originalQuery, processedQuery string) string {
	combined := strings.ToLower(originalQuery + " " + processedQuery)

	score := func(keywords []string) int {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(combined, kw) {
				n++
			}
		}
		return n
	}

	preschoolScore := score(preschoolKeywords)
	k12Score := score(k12AcademicKeywords)
	adminScore := score(adminKeywords)

	switch {
	case preschoolScore > 0:
		return EdipediaPreschools
	case adminScore > k12Score && adminScore > 0:
		return EdipediaEdifyHO
	default:
		return KBMSP
	}
}
