package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-adoption-api/internal/domain/applications"
)

type ApplicationsRepo struct {
	db *sql.DB
}

func NewApplicationsRepo(db *sql.DB) *ApplicationsRepo {
	return &ApplicationsRepo{db: db}
}

const applicationColumns = `
	id, pet_id, shelter_id, adopter_user_id,
	message, home_type, has_children, has_other_pets, experience,
	status, reject_reason, reviewed_at,
	created_at, updated_at
`

func (r *ApplicationsRepo) Create(ctx context.Context, a applications.Application) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		a.ID, a.PetID, a.ShelterID, a.AdopterUserID,
		a.Message, a.HomeType, a.HasChildren, a.HasOtherPets, a.Experience,
		string(a.Status), a.RejectReason, a.ReviewedAt,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM applications WHERE id = $1
	`, id)
	return scanApplication(row)
}

func (r *ApplicationsRepo) ListByPet(ctx context.Context, petID string) ([]applications.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE pet_id = $1 ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationsRepo) ListByAdopter(ctx context.Context, adopterUserID string) ([]applications.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE adopter_user_id = $1 ORDER BY created_at ASC
	`, adopterUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// Approve corre TODO en una transacción con UPDATEs condicionales
// (optimistic concurrency vía rows-affected): si cualquier guard
// falla se rollbackea y no queda efecto parcial.
func (r *ApplicationsRepo) Approve(ctx context.Context, id string, now time.Time) (applications.DecideResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return applications.DecideResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// 1) application pending → approved
	row := tx.QueryRowContext(ctx, `
		UPDATE applications
		SET status = 'approved', reviewed_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+applicationColumns+`
	`, id, now)

	a, err := scanApplication(row)
	if err != nil {
		if err == ErrNotFound {
			// o no existe, o ya no está pending
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return applications.DecideResult{}, applications.ErrConflict
			}
			return applications.DecideResult{}, ErrNotFound
		}
		return applications.DecideResult{}, err
	}

	// 2) pet available → adopted (compare-and-set)
	res, err := tx.ExecContext(ctx, `
		UPDATE pets
		SET status = 'adopted', updated_at = $2
		WHERE id = $1 AND status = 'available'
	`, a.PetID, now)
	if err != nil {
		return applications.DecideResult{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return applications.DecideResult{}, applications.ErrConflict
	}

	// 3) cascada: hermanas pending → rejected
	rows, err := tx.QueryContext(ctx, `
		UPDATE applications
		SET status = 'rejected', reject_reason = $3, reviewed_at = $2, updated_at = $2
		WHERE pet_id = $1 AND id <> $4 AND status = 'pending'
		RETURNING `+applicationColumns+`
	`, a.PetID, now, applications.RejectReasonPetGone, a.ID)
	if err != nil {
		return applications.DecideResult{}, err
	}
	rejected, err := collectApplications(rows)
	rows.Close()
	if err != nil {
		return applications.DecideResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return applications.DecideResult{}, err
	}

	return applications.DecideResult{
		Application:      a,
		RejectedSiblings: rejected,
	}, nil
}

func (r *ApplicationsRepo) Reject(ctx context.Context, id string, reason string, now time.Time) (applications.Application, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE applications
		SET status = 'rejected', reject_reason = $3, reviewed_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+applicationColumns+`
	`, id, now, reason)

	a, err := scanApplication(row)
	if err == ErrNotFound {
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return applications.Application{}, applications.ErrConflict
		}
		return applications.Application{}, ErrNotFound
	}
	return a, err
}

func (r *ApplicationsRepo) RejectPendingByPet(ctx context.Context, petID string, reason string, now time.Time) ([]applications.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE applications
		SET status = 'rejected', reject_reason = $3, reviewed_at = $2, updated_at = $2
		WHERE pet_id = $1 AND status = 'pending'
		RETURNING `+applicationColumns+`
	`, petID, now, reason)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func collectApplications(rows *sql.Rows) ([]applications.Application, error) {
	out := make([]applications.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanApplication(row rowScanner) (applications.Application, error) {
	var a applications.Application
	var status string
	var reviewedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.PetID, &a.ShelterID, &a.AdopterUserID,
		&a.Message, &a.HomeType, &a.HasChildren, &a.HasOtherPets, &a.Experience,
		&status, &a.RejectReason, &reviewedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return applications.Application{}, ErrNotFound
		}
		return applications.Application{}, err
	}
	a.Status = applications.Status(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	return a, nil
}
