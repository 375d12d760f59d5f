package animals

import (
	"testing"
	"time"
)

func TestMapSpecies(t *testing.T) {
	cases := map[string]Species{
		"Cat":     SpeciesCat,
		"feline":  SpeciesCat,
		" DOG ":   SpeciesDog,
		"Canine":  SpeciesDog,
		"Rabbit":  SpeciesOther,
		"":        SpeciesOther,
		"cat/dog": SpeciesOther,
	}
	for in, want := range cases {
		if got := MapSpecies(in); got != want {
			t.Fatalf("MapSpecies(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSpeciesCollection(t *testing.T) {
	if SpeciesCat.Collection() != "cats" || SpeciesDog.Collection() != "dogs" || SpeciesOther.Collection() != "other" {
		t.Fatalf("unexpected bucket names")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Rex (Bo) Jr":       "Rex Jr",
		"  Mia  ":           "Mia",
		"(temp) Tom (a)(b)": "Tom",
		"Jose\u0301":        "Jos\u00e9",
		"No Parens":         "No Parens",
		"Unclosed (paren":   "Unclosed (paren",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinLocation(t *testing.T) {
	if got := JoinLocation(" ", "Building A", "", " Room 3 "); got != "Building A Room 3" {
		t.Fatalf("unexpected location %q", got)
	}
	if got := JoinLocation(" > ", "", "  "); got != UnknownLocation {
		t.Fatalf("expected Unknown, got %q", got)
	}
}

func TestParseDate_FallsBackToNow(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	got := ParseDate("2024-06-30", now, "2006-01-02")
	if got.Year() != 2024 || got.Month() != time.June || got.Day() != 30 {
		t.Fatalf("unexpected date %v", got)
	}
	if got := ParseDate("30/06/2024", now, "2006-01-02"); !got.Equal(now) {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := ParseDate("", now, "2006-01-02"); !got.Equal(now) {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestSeedHistory(t *testing.T) {
	notes, logs := SeedHistory(t0)
	if len(notes) != 1 || notes[0].Author != SystemAuthor || notes[0].ID == "" {
		t.Fatalf("unexpected notes %#v", notes)
	}
	if len(logs) != 1 || logs[0].Type != "Initial Log" || !logs[0].StartTime.Equal(t0) {
		t.Fatalf("unexpected logs %#v", logs)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Animal{ID: "  "}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := Validate(Animal{ID: "1"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
