package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-adoption-api/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, shelter_id,
	name, species, breed, gender, size, color,
	age_years, age_months,
	description, behavior_notes, medical_info, photo_url,
	approved, status,
	created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		p.ID, p.ShelterID,
		p.Name, string(p.Species), p.Breed, p.Gender, p.Size, p.Color,
		p.AgeYears, p.AgeMonths,
		p.Description, p.BehaviorNotes, p.MedicalInfo, p.PhotoURL,
		p.Approved, string(p.Status),
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// Update escribe perfil + approved. El status queda explícitamente
// fuera: solo UpdateStatus (o el approve atómico) lo mueve.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2, species = $3, breed = $4, gender = $5, size = $6, color = $7,
			age_years = $8, age_months = $9,
			description = $10, behavior_notes = $11, medical_info = $12, photo_url = $13,
			approved = $14, updated_at = $15
		WHERE id = $1
	`,
		p.ID,
		p.Name, string(p.Species), p.Breed, p.Gender, p.Size, p.Color,
		p.AgeYears, p.AgeMonths,
		p.Description, p.BehaviorNotes, p.MedicalInfo, p.PhotoURL,
		p.Approved, p.UpdatedAt,
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

// UpdateStatus: compare-and-set vía UPDATE condicional. rows=0 con la
// fila existente => el status actual no estaba en `from` => conflicto.
func (r *PetsRepo) UpdateStatus(ctx context.Context, id string, from []pets.Status, to pets.Status, updatedAt time.Time) (pets.Pet, error) {
	fromStrs := make([]string, 0, len(from))
	for _, f := range from {
		fromStrs = append(fromStrs, string(f))
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE pets
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)
		RETURNING `+petColumns+`
	`, id, string(to), updatedAt, fromStrs)

	p, err := scanPet(row)
	if err == ErrNotFound {
		// distinguimos "no existe" de "existe en otro estado"
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return pets.Pet{}, pets.ErrConflict
		}
		return pets.Pet{}, ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+` FROM pets WHERE id = $1
	`, id)
	return scanPet(row)
}

func (r *PetsRepo) ListByShelter(ctx context.Context, shelterID string) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+` FROM pets WHERE shelter_id = $1 ORDER BY created_at ASC
	`, shelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPets(rows)
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+` FROM pets ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPets(rows)
}

func collectPets(rows *sql.Rows) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var species, status string
	err := row.Scan(
		&p.ID, &p.ShelterID,
		&p.Name, &species, &p.Breed, &p.Gender, &p.Size, &p.Color,
		&p.AgeYears, &p.AgeMonths,
		&p.Description, &p.BehaviorNotes, &p.MedicalInfo, &p.PhotoURL,
		&p.Approved, &status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, err
	}
	p.Species = pets.Species(species)
	p.Status = pets.Status(status)
	return p, nil
}
