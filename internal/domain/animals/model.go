package animals

import "time"

// Species define el bucket donde vive un animal durante toda su vida.
type Species string

const (
	SpeciesCat   Species = "cat"
	SpeciesDog   Species = "dog"
	SpeciesOther Species = "other"
)

// AllSpecies en el orden en que se recorren los buckets.
var AllSpecies = []Species{SpeciesCat, SpeciesDog, SpeciesOther}

// Collection devuelve el nombre del bucket de la especie.
func (s Species) Collection() string {
	switch s {
	case SpeciesCat:
		return "cats"
	case SpeciesDog:
		return "dogs"
	default:
		return "other"
	}
}

const (
	// PhotoSourceManual marca fotos subidas por un usuario; el sync nunca las toca.
	PhotoSourceManual = "manual"

	SystemAuthor = "ShelterPartner"
)

type Photo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Author    string    `json:"author,omitempty"`
	AuthorID  string    `json:"authorID,omitempty"`
}

// IsManual indica si la foto la agregó un usuario (no el proveedor).
func (p Photo) IsManual() bool {
	return p.Source == PhotoSourceManual
}

type Note struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
	Author    string    `json:"author"`
}

type Log struct {
	ID          string    `json:"id"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Type        string    `json:"type"`
	Author      string    `json:"author"`
	EarlyReason string    `json:"earlyReason"`
}

// Animal es tanto el registro canónico que produce un adapter como el registro
// persistido (superset: notes/logs/fotos manuales acumuladas).
// Los punteros son atributos opcionales: nil = el proveedor no lo informó.
type Animal struct {
	ID        string
	ShelterID string
	Species   Species

	Name         string
	Location     string
	FullLocation string
	IntakeDate   time.Time

	Description *string
	Sex         *string
	MonthsOld   *int
	Breed       *string

	Photos []Photo
	Notes  []Note
	Logs   []Log

	InKennel bool
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tombstone registra una foto que un usuario borró a propósito.
type Tombstone struct {
	AnimalID  string
	URL       string
	DeletedAt time.Time
}

// DeactivationMode define qué pasa con un animal que ya no está en el roster.
type DeactivationMode string

const (
	DeactivationDelete     DeactivationMode = "delete"
	DeactivationDeactivate DeactivationMode = "deactivate"
)

func ParseDeactivationMode(s string, def DeactivationMode) DeactivationMode {
	switch DeactivationMode(s) {
	case DeactivationDelete, DeactivationDeactivate:
		return DeactivationMode(s)
	default:
		return def
	}
}
