package postgres

import (
	"context"
	"database/sql"

	"pet-adoption-api/internal/domain/shelters"
)

type SheltersRepo struct {
	db *sql.DB
}

func NewSheltersRepo(db *sql.DB) *SheltersRepo {
	return &SheltersRepo{db: db}
}

const shelterColumns = `
	id, owner_user_id,
	name, description, address, city, state, phone, email, website,
	verified, created_at, updated_at
`

func (r *SheltersRepo) Create(ctx context.Context, sh shelters.Shelter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shelters (`+shelterColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		sh.ID, sh.OwnerUserID,
		sh.Name, sh.Description, sh.Address, sh.City, sh.State, sh.Phone, sh.Email, sh.Website,
		sh.Verified, sh.CreatedAt, sh.UpdatedAt,
	)
	return err
}

func (r *SheltersRepo) Update(ctx context.Context, sh shelters.Shelter) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shelters
		SET
			name = $2, description = $3, address = $4, city = $5, state = $6,
			phone = $7, email = $8, website = $9, verified = $10, updated_at = $11
		WHERE id = $1
	`,
		sh.ID,
		sh.Name, sh.Description, sh.Address, sh.City, sh.State,
		sh.Phone, sh.Email, sh.Website, sh.Verified, sh.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SheltersRepo) GetByID(ctx context.Context, id string) (shelters.Shelter, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+shelterColumns+` FROM shelters WHERE id = $1
	`, id)
	return scanShelter(row)
}

func (r *SheltersRepo) GetByOwner(ctx context.Context, ownerUserID string) (shelters.Shelter, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+shelterColumns+` FROM shelters WHERE owner_user_id = $1
	`, ownerUserID)
	return scanShelter(row)
}

func (r *SheltersRepo) List(ctx context.Context) ([]shelters.Shelter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+shelterColumns+` FROM shelters ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shelters.Shelter, 0)
	for rows.Next() {
		sh, err := scanShelter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShelter(row rowScanner) (shelters.Shelter, error) {
	var sh shelters.Shelter
	err := row.Scan(
		&sh.ID, &sh.OwnerUserID,
		&sh.Name, &sh.Description, &sh.Address, &sh.City, &sh.State, &sh.Phone, &sh.Email, &sh.Website,
		&sh.Verified, &sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return shelters.Shelter{}, ErrNotFound
		}
		return shelters.Shelter{}, err
	}
	return sh, nil
}
