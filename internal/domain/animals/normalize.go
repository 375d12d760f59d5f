package animals

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const UnknownLocation = "Unknown"

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

var speciesAliases = map[string]Species{
	"cat":    SpeciesCat,
	"feline": SpeciesCat,
	"dog":    SpeciesDog,
	"canine": SpeciesDog,
}

// MapSpecies traduce el tipo del proveedor. Todo lo no mapeado cae en other.
func MapSpecies(raw string) Species {
	if s, ok := speciesAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return SpeciesOther
}

// NormalizeName quita grupos "(...)", normaliza a NFC y colapsa espacios.
// "Rex (Bo) Jr" => "Rex Jr".
func NormalizeName(raw string) string {
	s := parenthetical.ReplaceAllString(raw, "")
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// JoinLocation une los tiers no vacíos en orden con sep; sin tiers => "Unknown".
func JoinLocation(sep string, tiers ...string) string {
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return UnknownLocation
	}
	return strings.Join(parts, sep)
}

// ParseDate prueba los layouts en orden; si ninguno sirve devuelve fallback.
func ParseDate(raw string, fallback time.Time, layouts ...string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t
		}
	}
	return fallback
}

// NewProviderPhoto crea una foto con origen en el proveedor.
func NewProviderPhoto(url, source, author, authorID string, now time.Time) Photo {
	return Photo{
		ID:        uuid.NewString(),
		URL:       url,
		Timestamp: now,
		Source:    source,
		Author:    author,
		AuthorID:  authorID,
	}
}

// SeedHistory arma el par note/log inicial con autoría del sistema.
// Sólo se escribe en inserts; el sync nunca vuelve a tocar notes/logs.
func SeedHistory(now time.Time) ([]Note, []Log) {
	notes := []Note{{
		ID:        uuid.NewString(),
		Timestamp: now,
		Note:      "Added animal to the app",
		Author:    SystemAuthor,
	}}
	logs := []Log{{
		ID:        uuid.NewString(),
		StartTime: now,
		EndTime:   now,
		Type:      "Initial Log",
		Author:    SystemAuthor,
	}}
	return notes, logs
}

// Validate exige lo mínimo que necesita el engine: un id.
func Validate(a Animal) error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrInvalidInput
	}
	return nil
}

// OptionalString devuelve nil si el proveedor no informó el campo.
func OptionalString(v string, present bool) *string {
	if !present {
		return nil
	}
	return ptr(strings.TrimSpace(v))
}

// OptionalInt igual que OptionalString pero para enteros.
func OptionalInt(v int, present bool) *int {
	if !present {
		return nil
	}
	return ptr(v)
}
