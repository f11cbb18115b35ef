package query

import "strings"

// Category is a content category detected from lexical cues in a query. Each
// category carries the extra search terms used for a boosted retrieval pass
// and the indicator phrases used to boost candidate relevance.
type Category struct {
	// Name tags candidates produced by the boosted search for this category.
	Name string
	// Triggers are the query words that activate the category.
	Triggers []string
	// BoostTerms are appended to the query for the category-boosted search.
	BoostTerms string
	// Indicators are phrases whose presence in a chunk raises its relevance
	// for queries in this category.
	Indicators []string
}

// Categories is the fixed table of content categories. Data-driven so new
// categories can be added without touching retrieval or scoring code.
var Categories = []Category{
	{
		Name:     "HOLIDAY",
		Triggers: []string{"holiday", "holidays", "vacation", "break", "celebration", "festival"},
		BoostTerms: "holiday list academic calendar north campus south campus " +
			"Independence Day Christmas Diwali festival celebration LOHRI BAISAKHI MAHAVEER",
		Indicators: []string{
			"academic holidays", "holiday list", "list of holidays", "north campus", "south campus",
			"independence day", "christmas", "diwali", "lohri", "baisakhi", "mahaveer jayanthi",
			"varalakshmi vratham", "ugadi", "ganesh chaturthi",
		},
	},
	{
		Name:     "FORM",
		Triggers: []string{"form", "slip", "observation", "report", "signature", "template"},
		BoostTerms: "form template observation slip fields signature date name " +
			"student class section undertaking",
		Indicators: []string{
			"observation slip", "disciplinary action", "class report", "name of student",
			"class & section", "date of observation", "signature", "teacher signature",
		},
	},
}

// DetectCategories returns the categories triggered by a query, in table order.
func DetectCategories(q string) []Category {
	lower := strings.ToLower(q)
	words := make(map[string]struct{})
	for _, w := range strings.Fields(lower) {
		words[strings.Trim(w, ".,!?;:\"()[]")] = struct{}{}
	}

	var matched []Category
	for _, cat := range Categories {
		for _, trigger := range cat.Triggers {
			if _, ok := words[trigger]; ok {
				matched = append(matched, cat)
				break
			}
		}
	}
	return matched
}

// IndicatorMatches counts how many of the category's indicator phrases appear
// in the given text. The text is expected to be lowercased by the caller.
func (c Category) IndicatorMatches(lowerText string) int {
	n := 0
	for _, ind := range c.Indicators {
		if strings.Contains(lowerText, ind) {
			n++
		}
	}
	return n
}
