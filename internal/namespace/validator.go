package namespace

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// gradePatterns match grade references in queries: numeric forms ("grade 7",
// "7th class", "std 7") and named early-childhood levels.
var gradePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bgrade\s*(\d{1,2})\b`),
	regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\s*grade\b`),
	regexp.MustCompile(`\bclass\s*(\d{1,2})\b`),
	regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\s*class\b`),
	regexp.MustCompile(`\bstd\s*(\d{1,2})\b`),
	regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\s*std\b`),
	regexp.MustCompile(`\blevel\s*(\d{1,2})\b`),
	regexp.MustCompile(`\b(playgroup|nursery|lkg|ukg|ik1|ik2|ik3)\b`),
}

// DetectGrades returns the normalized grade tags referenced by a query
// ("grade7", "nursery", ...). The result is sorted for stable output.
func DetectGrades(query string) []string {
	lower := strings.ToLower(query)
	found := make(map[string]struct{})

	for _, pat := range gradePatterns {
		for _, m := range pat.FindAllStringSubmatch(lower, -1) {
			if len(m) < 2 {
				continue
			}
			tag := m[1]
			if tag >= "0" && tag <= "99" && isDigits(tag) {
				tag = "grade" + tag
			}
			found[tag] = struct{}{}
		}
	}

	grades := make([]string, 0, len(found))
	for g := range found {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	return grades
}

// AccessibleGrades returns the union of grade tags reachable through the
// given namespaces. Any edipedia namespace grants access to all grades since
// general content carries no grade restriction.
func AccessibleGrades(namespaces []string) (map[string]struct{}, bool) {
	grades := make(map[string]struct{})
	allGrades := false

	for _, ns := range namespaces {
		info, ok := registry[ns]
		if !ok {
			continue
		}
		if len(info.Grades) == 0 {
			allGrades = true
			continue
		}
		for _, g := range info.Grades {
			grades[g] = struct{}{}
		}
	}
	return grades, allGrades
}

// ValidateAccess checks whether a query's grade references fall within the
// grades reachable through the caller's namespaces. It returns true when
// access is allowed; otherwise false plus a human-readable denial message.
// Queries with no grade references are always allowed.
func ValidateAccess(query string, userNamespaces []string) (bool, string) {
	requested := DetectGrades(query)
	if len(requested) == 0 {
		return true, ""
	}

	accessible, allGrades := AccessibleGrades(userNamespaces)
	if allGrades {
		return true, ""
	}

	var denied []string
	for _, g := range requested {
		if _, ok := accessible[g]; !ok {
			denied = append(denied, g)
		}
	}
	if len(denied) == 0 {
		return true, ""
	}

	return false, denialMessage(denied, userNamespaces)
}

func denialMessage(deniedGrades, userNamespaces []string) string {
	var ranges []string
	for _, ns := range userNamespaces {
		if info, ok := registry[ns]; ok && len(info.Grades) > 0 {
			ranges = append(ranges, info.DisplayName)
		}
	}

	pretty := make([]string, len(deniedGrades))
	for i, g := range deniedGrades {
		if num := strings.TrimPrefix(g, "grade"); num != g {
			pretty[i] = "Grade " + num
		} else {
			pretty[i] = strings.ToUpper(g[:1]) + g[1:]
		}
	}

	msg := fmt.Sprintf("I can only answer questions about content you have access to. Your access does not include %s.",
		strings.Join(pretty, ", "))
	if len(ranges) > 0 {
		msg += fmt.Sprintf(" You currently have access to: %s.", strings.Join(ranges, ", "))
	}
	return msg
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
