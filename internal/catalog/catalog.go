// Package catalog extracts doctor listings from uploaded document text.
// Clinics typically upload a price sheet with one line per doctor; the
// assistant uses the parsed entries to quote fees during booking. When no
// document mentions doctors, a small built-in default list is used so the
// booking flow still works out of the box.
package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// Doctor is one parsed catalog entry.
type Doctor struct {
	Name      string
	Specialty string
	Fee       int // consultation fee in whole currency units, 0 if unknown
}

// doctorLine matches lines like:
//
//	Dr. Alice Smith - Cardiology, Fee: $150
//	Dr Bob - Dermatology, Fee: $120
var doctorLine = regexp.MustCompile(`Dr\.?\s+([A-Za-z][A-Za-z .'-]*?)\s*-\s*([A-Za-z][A-Za-z /&-]*?)\s*,\s*Fee:\s*\$?(\d+)`)

// Parse scans text for doctor listings and returns them in document order.
// Duplicate names keep the first occurrence.
func Parse(text string) []Doctor {
	matches := doctorLine.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	doctors := make([]Doctor, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		fee, _ := strconv.Atoi(m[3])
		doctors = append(doctors, Doctor{
			Name:      name,
			Specialty: strings.TrimSpace(m[2]),
			Fee:       fee,
		})
	}
	return doctors
}

// Default is the built-in doctor list used when no uploaded document
// contains a catalog.
func Default() []Doctor {
	return []Doctor{
		{Name: "Alice Johnson", Specialty: "Cardiology", Fee: 150},
		{Name: "Brian Lee", Specialty: "Dermatology", Fee: 120},
		{Name: "Carla Mendes", Specialty: "General Medicine", Fee: 100},
	}
}

// FromContext parses text and falls back to [Default] when nothing matched.
func FromContext(text string) []Doctor {
	if doctors := Parse(text); len(doctors) > 0 {
		return doctors
	}
	return Default()
}

// FindBySpecialty returns doctors whose specialty contains the query,
// case-insensitively.
func FindBySpecialty(doctors []Doctor, specialty string) []Doctor {
	q := strings.ToLower(strings.TrimSpace(specialty))
	if q == "" {
		return nil
	}
	var out []Doctor
	for _, d := range doctors {
		if strings.Contains(strings.ToLower(d.Specialty), q) {
			out = append(out, d)
		}
	}
	return out
}
