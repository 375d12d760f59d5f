package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"shelter-roster-sync/internal/domain/shelters"
)

// código SQLSTATE de unique_violation
const uniqueViolation = "23505"

type SheltersRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSheltersRepo(db *sql.DB) *SheltersRepo {
	return &SheltersRepo{db: db, now: time.Now}
}

const shelterColumns = `
	id, name, management_software, settings,
	last_sync, last_cat_sync, last_dog_sync, last_sync_changes,
	created_at, updated_at`

func (r *SheltersRepo) GetByID(ctx context.Context, id string) (shelters.Shelter, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return shelters.Shelter{}, shelters.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT`+shelterColumns+` FROM shelters WHERE id = $1`, id)
	s, err := scanShelter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shelters.Shelter{}, shelters.ErrNotFound
	}
	return s, err
}

func (r *SheltersRepo) List(ctx context.Context) ([]shelters.Shelter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT`+shelterColumns+` FROM shelters ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shelters.Shelter, 0)
	for rows.Next() {
		s, err := scanShelter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SheltersRepo) Create(ctx context.Context, s shelters.Shelter) error {
	settings, err := json.Marshal(s.Settings)
	if err != nil {
		return err
	}
	changes, err := json.Marshal(s.Ledger.LastSyncChanges)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shelters (`+shelterColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		s.ID,
		s.Name,
		string(s.ManagementSoftware),
		settings,
		s.Ledger.LastSync,
		s.Ledger.LastCatSync,
		s.Ledger.LastDogSync,
		changes,
		s.CreatedAt,
		s.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shelters.ErrAlreadyExists
	}
	return err
}

func (r *SheltersRepo) Put(ctx context.Context, s shelters.Shelter) error {
	settings, err := json.Marshal(s.Settings)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shelters (id, name, management_software, settings, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			management_software = EXCLUDED.management_software,
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at
	`,
		s.ID,
		s.Name,
		string(s.ManagementSoftware),
		settings,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *SheltersRepo) UpdateLedger(ctx context.Context, id string, l shelters.Ledger) error {
	changes, err := json.Marshal(l.LastSyncChanges)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE shelters
		SET
			last_sync = $2,
			last_cat_sync = $3,
			last_dog_sync = $4,
			last_sync_changes = $5,
			updated_at = $6
		WHERE id = $1
	`,
		id,
		l.LastSync,
		l.LastCatSync,
		l.LastDogSync,
		changes,
		r.now(),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return shelters.ErrNotFound
	}
	return nil
}

func (r *SheltersRepo) ClearCredentials(ctx context.Context, id string, m shelters.ManagementSoftware) error {
	var keys []string
	switch m {
	case shelters.SoftwareShelterLuv:
		keys = []string{"apiKey"}
	case shelters.SoftwareShelterManager:
		keys = []string{"asmUsername", "asmPassword", "asmAccountNumber"}
	default:
		return nil
	}

	// settings - '{k1,k2}' quita las claves del JSONB
	res, err := r.db.ExecContext(ctx, `
		UPDATE shelters
		SET settings = settings - $2::text[], updated_at = $3
		WHERE id = $1
	`, id, keys, r.now())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return shelters.ErrNotFound
	}
	return nil
}

func scanShelter(s rowScanner) (shelters.Shelter, error) {
	var (
		sh                shelters.Shelter
		software          string
		settings, changes []byte
		last, cat, dog    sql.NullTime
	)
	if err := s.Scan(
		&sh.ID,
		&sh.Name,
		&software,
		&settings,
		&last,
		&cat,
		&dog,
		&changes,
		&sh.CreatedAt,
		&sh.UpdatedAt,
	); err != nil {
		return shelters.Shelter{}, err
	}

	sh.ManagementSoftware = shelters.ManagementSoftware(software)
	sh.Settings = shelters.DefaultSettings()
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &sh.Settings); err != nil {
			return shelters.Shelter{}, err
		}
	}
	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &sh.Ledger.LastSyncChanges); err != nil {
			return shelters.Shelter{}, err
		}
	}
	sh.Ledger.LastSync = fromNullTime(last)
	sh.Ledger.LastCatSync = fromNullTime(cat)
	sh.Ledger.LastDogSync = fromNullTime(dog)
	return sh, nil
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
