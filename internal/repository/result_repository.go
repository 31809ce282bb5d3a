package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// ResultRepository stores the decision audit trail.
type ResultRepository interface {
	SaveClassification(ctx context.Context, taskID string, result *domain.ClassificationResult) error
	SaveAssignment(ctx context.Context, taskID string, result *domain.AssignmentResult) error
	ListClassificationsByTask(ctx context.Context, taskID string) ([]domain.ClassificationResult, error)
	ListAssignmentsByTask(ctx context.Context, taskID string) ([]domain.AssignmentResult, error)
}

type resultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository instantiates repository.
func NewResultRepository(pool *pgxpool.Pool) ResultRepository {
	return &resultRepository{pool: pool}
}

func (r *resultRepository) SaveClassification(ctx context.Context, taskID string, result *domain.ClassificationResult) error {
	categoryScores, err := json.Marshal(result.CategoryScores)
	if err != nil {
		return fmt.Errorf("marshal category scores: %w", err)
	}
	priorityScores, err := json.Marshal(result.PriorityScores)
	if err != nil {
		return fmt.Errorf("marshal priority scores: %w", err)
	}

	const query = `
        INSERT INTO classifications (task_id, category, priority, confidence, strategy, reasoning, category_scores, priority_scores)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.pool.Exec(ctx, query,
		taskID,
		result.Category,
		result.Priority,
		result.Confidence,
		result.Strategy,
		result.Reasoning,
		categoryScores,
		priorityScores,
	)
	return err
}

func (r *resultRepository) SaveAssignment(ctx context.Context, taskID string, result *domain.AssignmentResult) error {
	teamScores, err := json.Marshal(result.TeamScores)
	if err != nil {
		return fmt.Errorf("marshal team scores: %w", err)
	}
	alternatives, err := json.Marshal(result.Alternatives)
	if err != nil {
		return fmt.Errorf("marshal alternatives: %w", err)
	}

	const query = `
        INSERT INTO assignments (task_id, team_id, confidence, strategy, reasoning, team_scores, factors_considered, alternatives)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.pool.Exec(ctx, query,
		taskID,
		result.AssignedTeamID,
		result.Confidence,
		result.Strategy,
		result.Reasoning,
		teamScores,
		result.FactorsConsidered,
		alternatives,
	)
	return err
}

func (r *resultRepository) ListClassificationsByTask(ctx context.Context, taskID string) ([]domain.ClassificationResult, error) {
	const query = `
        SELECT category, priority, confidence, strategy, reasoning, category_scores, priority_scores
        FROM classifications WHERE task_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClassificationResult
	for rows.Next() {
		var item domain.ClassificationResult
		var categoryScores, priorityScores []byte
		if err := rows.Scan(
			&item.Category,
			&item.Priority,
			&item.Confidence,
			&item.Strategy,
			&item.Reasoning,
			&categoryScores,
			&priorityScores,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(categoryScores, &item.CategoryScores); err != nil {
			return nil, fmt.Errorf("unmarshal category scores: %w", err)
		}
		if err := json.Unmarshal(priorityScores, &item.PriorityScores); err != nil {
			return nil, fmt.Errorf("unmarshal priority scores: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *resultRepository) ListAssignmentsByTask(ctx context.Context, taskID string) ([]domain.AssignmentResult, error) {
	const query = `
        SELECT team_id, confidence, strategy, reasoning, team_scores, factors_considered, alternatives
        FROM assignments WHERE task_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentResult
	for rows.Next() {
		var item domain.AssignmentResult
		var teamScores, alternatives []byte
		if err := rows.Scan(
			&item.AssignedTeamID,
			&item.Confidence,
			&item.Strategy,
			&item.Reasoning,
			&teamScores,
			&item.FactorsConsidered,
			&alternatives,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(teamScores, &item.TeamScores); err != nil {
			return nil, fmt.Errorf("unmarshal team scores: %w", err)
		}
		if err := json.Unmarshal(alternatives, &item.Alternatives); err != nil {
			return nil, fmt.Errorf("unmarshal alternatives: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
