package animals

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Patch es la actualización por campos que el sync aplica sobre un registro
// existente. nil = campo no informado (no se toca). Notes/logs nunca forman parte.
type Patch struct {
	Name         *string
	Location     *string
	FullLocation *string
	Description  *string
	Sex          *string
	MonthsOld    *int
	Breed        *string

	// Photos se aplica sólo si SetPhotos; una lista vacía es un valor válido.
	Photos    []Photo
	SetPhotos bool

	// Activate vuelve a marcar isActive=true (modo soft-delete).
	Activate bool
}

// photoEquality compara contenido de fotos: id/timestamp se regeneran en cada fetch.
var photoEquality = cmp.Options{
	cmpopts.EquateEmpty(),
	cmpopts.IgnoreFields(Photo{}, "ID", "Timestamp"),
}

// PatchFrom arma el patch a partir del registro entrante y las fotos ya mergeadas.
func PatchFrom(incoming Animal, mergedPhotos []Photo) Patch {
	p := Patch{
		Name:         ptr(incoming.Name),
		Location:     ptr(incoming.Location),
		FullLocation: ptr(incoming.FullLocation),
		Description:  incoming.Description,
		Sex:          incoming.Sex,
		MonthsOld:    incoming.MonthsOld,
		Breed:        incoming.Breed,
		Photos:       mergedPhotos,
		SetPhotos:    true,
	}
	if p.Photos == nil {
		p.Photos = []Photo{}
	}
	return p
}

// Differs compara en profundidad cada campo presente en el patch contra el
// registro existente. Sin diferencias no hay escritura.
func (p Patch) Differs(existing Animal) bool {
	if p.Name != nil && *p.Name != existing.Name {
		return true
	}
	if p.Location != nil && *p.Location != existing.Location {
		return true
	}
	if p.FullLocation != nil && *p.FullLocation != existing.FullLocation {
		return true
	}
	if p.Description != nil && !cmp.Equal(p.Description, existing.Description) {
		return true
	}
	if p.Sex != nil && !cmp.Equal(p.Sex, existing.Sex) {
		return true
	}
	if p.MonthsOld != nil && !cmp.Equal(p.MonthsOld, existing.MonthsOld) {
		return true
	}
	if p.Breed != nil && !cmp.Equal(p.Breed, existing.Breed) {
		return true
	}
	if p.SetPhotos && !cmp.Equal(p.Photos, existing.Photos, photoEquality) {
		return true
	}
	if p.Activate && !existing.IsActive {
		return true
	}
	return false
}

// Apply devuelve el registro con el patch aplicado. No modifica a.
func (p Patch) Apply(a Animal) Animal {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.FullLocation != nil {
		a.FullLocation = *p.FullLocation
	}
	if p.Description != nil {
		a.Description = ptr(*p.Description)
	}
	if p.Sex != nil {
		a.Sex = ptr(*p.Sex)
	}
	if p.MonthsOld != nil {
		a.MonthsOld = ptr(*p.MonthsOld)
	}
	if p.Breed != nil {
		a.Breed = ptr(*p.Breed)
	}
	if p.SetPhotos {
		a.Photos = append([]Photo(nil), p.Photos...)
	}
	if p.Activate {
		a.IsActive = true
	}
	return a
}

// Fields lista los campos presentes (para logs y para armar el UPDATE).
func (p Patch) Fields() []string {
	out := make([]string, 0, 9)
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.Location != nil {
		out = append(out, "location")
	}
	if p.FullLocation != nil {
		out = append(out, "fullLocation")
	}
	if p.Description != nil {
		out = append(out, "description")
	}
	if p.Sex != nil {
		out = append(out, "sex")
	}
	if p.MonthsOld != nil {
		out = append(out, "monthsOld")
	}
	if p.Breed != nil {
		out = append(out, "breed")
	}
	if p.SetPhotos {
		out = append(out, "photos")
	}
	if p.Activate {
		out = append(out, "isActive")
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
