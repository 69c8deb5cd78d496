package catalog

import (
	"testing"
)

func Test_Parse_StandardLines(t *testing.T) {
	t.Parallel()
	text := "Our specialists:\n\nDr. Alice Smith - Cardiology, Fee: $150\nDr Bob - Dermatology, Fee: 120\n"
	got := Parse(text)
	if len(got) != 2 {
		t.Fatalf("want 2 doctors, got %d: %+v", len(got), got)
	}
	if got[0].Name != "Alice Smith" || got[0].Specialty != "Cardiology" || got[0].Fee != 150 {
		t.Errorf("doctor 0: %+v", got[0])
	}
	if got[1].Name != "Bob" || got[1].Specialty != "Dermatology" || got[1].Fee != 120 {
		t.Errorf("doctor 1: %+v", got[1])
	}
}

func Test_Parse_DeduplicatesByName(t *testing.T) {
	t.Parallel()
	text := "Dr. Alice - Cardiology, Fee: $150\nDr. alice - Cardiology, Fee: $175\n"
	got := Parse(text)
	if len(got) != 1 {
		t.Fatalf("want 1 doctor, got %d", len(got))
	}
	if got[0].Fee != 150 {
		t.Errorf("first occurrence should win, got fee %d", got[0].Fee)
	}
}

func Test_Parse_NoMatches(t *testing.T) {
	t.Parallel()
	if got := Parse("The clinic opens at nine."); got != nil {
		t.Errorf("want nil, got %+v", got)
	}
}

func Test_FromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()
	got := FromContext("nothing about doctors here")
	if len(got) != len(Default()) {
		t.Errorf("want default catalog, got %+v", got)
	}

	got = FromContext("Dr. Zoe - Neurology, Fee: $200")
	if len(got) != 1 || got[0].Name != "Zoe" {
		t.Errorf("parsed catalog should win over default: %+v", got)
	}
}

func Test_FindBySpecialty(t *testing.T) {
	t.Parallel()
	doctors := []Doctor{
		{Name: "Alice", Specialty: "Cardiology"},
		{Name: "Bob", Specialty: "Dermatology"},
		{Name: "Carla", Specialty: "General Medicine"},
	}
	got := FindBySpecialty(doctors, "cardio")
	if len(got) != 1 || got[0].Name != "Alice" {
		t.Errorf("FindBySpecialty(cardio) = %+v", got)
	}
	if got := FindBySpecialty(doctors, ""); got != nil {
		t.Errorf("empty query should return nil, got %+v", got)
	}
}
