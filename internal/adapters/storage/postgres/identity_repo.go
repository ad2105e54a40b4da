package postgres

import (
	"context"
	"database/sql"

	"pet-adoption-api/internal/domain/identity"
)

type IdentityRepo struct {
	db *sql.DB
}

func NewIdentityRepo(db *sql.DB) *IdentityRepo {
	return &IdentityRepo{db: db}
}

func (r *IdentityRepo) CreateActor(ctx context.Context, a identity.Actor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO actors (id, full_name, email, phone, location, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		a.ID, a.FullName, a.Email, a.Phone, a.Location, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *IdentityRepo) GetActor(ctx context.Context, id string) (identity.Actor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, location, created_at, updated_at
		FROM actors
		WHERE id = $1
	`, id)

	var a identity.Actor
	if err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.Phone, &a.Location, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return identity.Actor{}, ErrNotFound
		}
		return identity.Actor{}, err
	}
	return a, nil
}

func (r *IdentityRepo) GrantRole(ctx context.Context, actorID string, role identity.Role) error {
	// idempotente por la unique (actor_id, role)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO actor_roles (actor_id, role, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (actor_id, role) DO NOTHING
	`, actorID, string(role))
	return err
}

func (r *IdentityRepo) RevokeRole(ctx context.Context, actorID string, role identity.Role) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM actor_roles WHERE actor_id = $1 AND role = $2
	`, actorID, string(role))
	return err
}

func (r *IdentityRepo) ListRoles(ctx context.Context, actorID string) ([]identity.Role, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role FROM actor_roles WHERE actor_id = $1 ORDER BY created_at ASC
	`, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]identity.Role, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, identity.Role(role))
	}
	return out, rows.Err()
}
