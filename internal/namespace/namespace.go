// Package namespace defines the content namespaces that partition the vector
// index and implements query-to-namespace resolution and grade-access
// validation. A namespace is both an index partition and an access-scope
// boundary: kb-* namespaces hold grade-band curriculum content, edipedia-*
// namespaces hold general content.
package namespace

// Knowledge-base (curriculum) namespaces, one per grade band.
const (
	KBESP = "kb-esp" // Early School Program: playgroup to IK3
	KBPSP = "kb-psp" // Primary School Program: grades 1-5
	KBMSP = "kb-msp" // Middle School Program: grades 6-10
	KBSSP = "kb-ssp" // Senior School Program: grades 11-12
)

// General-content namespaces.
const (
	EdipediaK12        = "edipedia-k12"
	EdipediaPreschools = "edipedia-preschools"
	EdipediaEdifyHO    = "edipedia-edifyho"
)

// Info describes a namespace for display and access checks.
type Info struct {
	Name        string
	DisplayName string
	Description string
	// Grades lists the grade tags reachable through this namespace. Empty
	// for edipedia namespaces, which carry no grade restriction.
	Grades []string
}

var registry = map[string]Info{
	KBESP: {
		Name:        KBESP,
		DisplayName: "Early School Program",
		Description: "Early childhood education content (Playgroup to IK3)",
		Grades:      []string{"playgroup", "nursery", "lkg", "ukg", "ik1", "ik2", "ik3"},
	},
	KBPSP: {
		Name:        KBPSP,
		DisplayName: "Primary School Program",
		Description: "Primary school curriculum content (Grades 1-5)",
		Grades:      []string{"grade1", "grade2", "grade3", "grade4", "grade5"},
	},
	KBMSP: {
		Name:        KBMSP,
		DisplayName: "Middle School Program",
		Description: "Middle school curriculum content (Grades 6-10)",
		Grades:      []string{"grade6", "grade7", "grade8", "grade9", "grade10"},
	},
	KBSSP: {
		Name:        KBSSP,
		DisplayName: "Senior School Program",
		Description: "Senior school curriculum content (Grades 11-12)",
		Grades:      []string{"grade11", "grade12"},
	},
	EdipediaK12: {
		Name:        EdipediaK12,
		DisplayName: "K12 Academic Content",
		Description: "General K12 educational content and policies",
	},
	EdipediaPreschools: {
		Name:        EdipediaPreschools,
		DisplayName: "Preschool Content",
		Description: "Preschool and early childhood education content",
	},
	EdipediaEdifyHO: {
		Name:        EdipediaEdifyHO,
		DisplayName: "Administrative Content",
		Description: "Administrative policies and procedures",
	},
}

// All returns every known namespace name, KB namespaces first.
func All() []string {
	return []string{KBESP, KBPSP, KBMSP, KBSSP, EdipediaK12, EdipediaPreschools, EdipediaEdifyHO}
}

// Valid reports whether name is a known namespace.
func Valid(name string) bool {
	_, ok := registry[name]
	return ok
}

// IsKB reports whether name is a grade-band curriculum namespace.
func IsKB(name string) bool {
	info, ok := registry[name]
	return ok && len(info.Grades) > 0
}

// Lookup returns the Info for a namespace name.
func Lookup(name string) (Info, bool) {
	info, ok := registry[name]
	return info, ok
}
