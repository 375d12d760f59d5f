package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shelter-roster-sync/internal/domain/animals"
)

type AnimalsRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db, now: time.Now}
}

const animalColumns = `
	shelter_id, species, id,
	name, location, full_location, intake_date,
	description, sex, months_old, breed,
	photos, notes, logs,
	in_kennel, is_active,
	created_at, updated_at`

func (r *AnimalsRepo) ListByShelter(ctx context.Context, shelterID string) ([]animals.Animal, error) {
	shelterID = strings.TrimSpace(shelterID)
	if shelterID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT`+animalColumns+`
		FROM animals
		WHERE shelter_id = $1
		ORDER BY species ASC, id ASC
	`, shelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) ListTombstones(ctx context.Context, shelterID string) (map[string][]animals.Tombstone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT animal_id, url, deleted_at
		FROM deleted_photos
		WHERE shelter_id = $1
	`, strings.TrimSpace(shelterID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]animals.Tombstone)
	for rows.Next() {
		var t animals.Tombstone
		if err := rows.Scan(&t.AnimalID, &t.URL, &t.DeletedAt); err != nil {
			return nil, err
		}
		out[t.AnimalID] = append(out[t.AnimalID], t)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) RemovePhoto(ctx context.Context, shelterID string, species animals.Species, animalID string, photos []animals.Photo, t animals.Tombstone) error {
	photosJSON, err := toJSON(photos)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE animals
		SET photos = $4, updated_at = $5
		WHERE shelter_id = $1 AND species = $2 AND id = $3
	`, shelterID, string(species), animalID, photosJSON, r.now())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return animals.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO deleted_photos (shelter_id, animal_id, url, deleted_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (shelter_id, animal_id, url) DO NOTHING
	`, shelterID, animalID, t.URL, t.DeletedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *AnimalsRepo) NewBatch(shelterID string) animals.Batch {
	return &animalsBatch{repo: r, shelterID: strings.TrimSpace(shelterID)}
}

// stmt es una sentencia ya armada; mustAffect indica que 0 filas = ErrNotFound.
type stmt struct {
	query      string
	args       []any
	mustAffect bool
	err        error
}

// animalsBatch ejecuta todas sus sentencias en una única transacción.
type animalsBatch struct {
	repo      *AnimalsRepo
	shelterID string
	stmts     []stmt
}

func (b *animalsBatch) Insert(a animals.Animal) {
	now := b.repo.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	q, args, err := buildInsert(b.shelterID, a)
	b.stmts = append(b.stmts, stmt{query: q, args: args, err: err})
}

func (b *animalsBatch) Update(species animals.Species, id string, p animals.Patch) {
	q, args, err := buildPatchUpdate(b.shelterID, species, id, p, b.repo.now())
	b.stmts = append(b.stmts, stmt{query: q, args: args, mustAffect: true, err: err})
}

func (b *animalsBatch) Deactivate(species animals.Species, id string, at time.Time) {
	b.stmts = append(b.stmts, stmt{
		query: `
		UPDATE animals
		SET is_active = FALSE, updated_at = $4
		WHERE shelter_id = $1 AND species = $2 AND id = $3`,
		args:       []any{b.shelterID, string(species), id, at},
		mustAffect: true,
	})
}

func (b *animalsBatch) Delete(species animals.Species, id string) {
	b.stmts = append(b.stmts, stmt{
		query: `
		DELETE FROM animals
		WHERE shelter_id = $1 AND species = $2 AND id = $3`,
		args: []any{b.shelterID, string(species), id},
	})
}

func (b *animalsBatch) Len() int { return len(b.stmts) }

func (b *animalsBatch) Commit(ctx context.Context) error {
	for _, s := range b.stmts {
		if s.err != nil {
			return s.err
		}
	}

	tx, err := b.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range b.stmts {
		res, err := tx.ExecContext(ctx, s.query, s.args...)
		if err != nil {
			return err
		}
		if s.mustAffect {
			if n, _ := res.RowsAffected(); n == 0 {
				return animals.ErrNotFound
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	b.stmts = nil
	return nil
}

// buildInsert arma un upsert completo: un insert sobre un id existente lo
// reemplaza entero.
func buildInsert(shelterID string, a animals.Animal) (string, []any, error) {
	photos, err := toJSON(a.Photos)
	if err != nil {
		return "", nil, err
	}
	notes, err := toJSON(a.Notes)
	if err != nil {
		return "", nil, err
	}
	logs, err := toJSON(a.Logs)
	if err != nil {
		return "", nil, err
	}

	q := `
		INSERT INTO animals (` + animalColumns + `
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (shelter_id, species, id) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			full_location = EXCLUDED.full_location,
			intake_date = EXCLUDED.intake_date,
			description = EXCLUDED.description,
			sex = EXCLUDED.sex,
			months_old = EXCLUDED.months_old,
			breed = EXCLUDED.breed,
			photos = EXCLUDED.photos,
			notes = EXCLUDED.notes,
			logs = EXCLUDED.logs,
			in_kennel = EXCLUDED.in_kennel,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`

	args := []any{
		shelterID,
		string(a.Species),
		a.ID,
		a.Name,
		a.Location,
		a.FullLocation,
		toNullTime(a.IntakeDate),
		toNullString(a.Description),
		toNullString(a.Sex),
		toNullInt(a.MonthsOld),
		toNullString(a.Breed),
		photos,
		notes,
		logs,
		a.InKennel,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	}
	return q, args, nil
}

// buildPatchUpdate arma el UPDATE sólo con los campos presentes en el patch.
func buildPatchUpdate(shelterID string, species animals.Species, id string, p animals.Patch, now time.Time) (string, []any, error) {
	sets := make([]string, 0, 10)
	args := []any{shelterID, string(species), id}
	argN := 4

	set := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argN))
		args = append(args, v)
		argN++
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Location != nil {
		set("location", *p.Location)
	}
	if p.FullLocation != nil {
		set("full_location", *p.FullLocation)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Sex != nil {
		set("sex", *p.Sex)
	}
	if p.MonthsOld != nil {
		set("months_old", *p.MonthsOld)
	}
	if p.Breed != nil {
		set("breed", *p.Breed)
	}
	if p.SetPhotos {
		photos, err := toJSON(p.Photos)
		if err != nil {
			return "", nil, err
		}
		set("photos", photos)
	}
	if p.Activate {
		sets = append(sets, "is_active = TRUE")
	}
	set("updated_at", now)

	q := "UPDATE animals SET " + strings.Join(sets, ", ") +
		" WHERE shelter_id = $1 AND species = $2 AND id = $3"
	return q, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(s rowScanner) (animals.Animal, error) {
	var (
		a                       animals.Animal
		species                 string
		intake                  sql.NullTime
		description, sex, breed sql.NullString
		months                  sql.NullInt64
		photos, notes, logs     []byte
	)
	if err := s.Scan(
		&a.ShelterID,
		&species,
		&a.ID,
		&a.Name,
		&a.Location,
		&a.FullLocation,
		&intake,
		&description,
		&sex,
		&months,
		&breed,
		&photos,
		&notes,
		&logs,
		&a.InKennel,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	a.Species = animals.Species(species)
	if intake.Valid {
		a.IntakeDate = intake.Time
	}
	a.Description = fromNullString(description)
	a.Sex = fromNullString(sex)
	a.Breed = fromNullString(breed)
	if months.Valid {
		v := int(months.Int64)
		a.MonthsOld = &v
	}

	if err := fromJSON(photos, &a.Photos); err != nil {
		return animals.Animal{}, fmt.Errorf("animal %s photos: %w", a.ID, err)
	}
	if err := fromJSON(notes, &a.Notes); err != nil {
		return animals.Animal{}, fmt.Errorf("animal %s notes: %w", a.ID, err)
	}
	if err := fromJSON(logs, &a.Logs); err != nil {
		return animals.Animal{}, fmt.Errorf("animal %s logs: %w", a.ID, err)
	}
	return a, nil
}

// JSONB: nil se guarda como [] para que el diff no vea nil vs vacío.
func toJSON[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}

func fromJSON[T any](raw []byte, out *[]T) error {
	*out = []T{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
