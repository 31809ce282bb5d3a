package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// ErrTeamAtCapacity signals a load increment refused by the capacity guard.
var ErrTeamAtCapacity = errors.New("team is at capacity")

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	ListActiveByCategory(ctx context.Context, category domain.Category) ([]domain.Team, error)
	IncrementLoad(ctx context.Context, id string) error
	DecrementLoad(ctx context.Context, id string) error
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

const teamColumns = `id, name, category, description, skills, capacity, current_load, priority_weight, is_active, created_at, updated_at`

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, category, description, skills, capacity, current_load, priority_weight, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.Category,
		team.Description,
		team.Skills,
		team.Capacity,
		team.CurrentLoad,
		team.PriorityWeight,
		team.IsActive,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, category=$2, description=$3, skills=$4, capacity=$5,
            current_load=$6, priority_weight=$7, is_active=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		team.Name,
		team.Category,
		team.Description,
		team.Skills,
		team.Capacity,
		team.CurrentLoad,
		team.PriorityWeight,
		team.IsActive,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams WHERE id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Category,
		&team.Description,
		&team.Skills,
		&team.Capacity,
		&team.CurrentLoad,
		&team.PriorityWeight,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *teamRepository) ListActiveByCategory(ctx context.Context, category domain.Category) ([]domain.Team, error) {
	// Roster order is creation order; assignment tie-breaks depend on it.
	const query = `SELECT ` + teamColumns + ` FROM teams
        WHERE category=$1 AND is_active=TRUE ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

// IncrementLoad bumps the load only while below capacity, so concurrent
// assignments cannot overload a team.
func (r *teamRepository) IncrementLoad(ctx context.Context, id string) error {
	const query = `
        UPDATE teams SET current_load = current_load + 1, updated_at=NOW()
        WHERE id=$1 AND is_active=TRUE AND current_load < capacity`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTeamAtCapacity
	}
	return nil
}

func (r *teamRepository) DecrementLoad(ctx context.Context, id string) error {
	const query = `
        UPDATE teams SET current_load = current_load - 1, updated_at=NOW()
        WHERE id=$1 AND current_load > 0`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTeams(rows pgx.Rows) ([]domain.Team, error) {
	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Category,
			&team.Description,
			&team.Skills,
			&team.Capacity,
			&team.CurrentLoad,
			&team.PriorityWeight,
			&team.IsActive,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}
