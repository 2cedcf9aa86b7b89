package repository

import (
	"context"
	"fmt"

	"github.com/fonciercd/cadastre-api/internal/database"
	"github.com/fonciercd/cadastre-api/internal/models"
)

// ReferenceRepository lists the reference tables whose values define
// aggregation buckets and populate filter dropdowns. Every listed value
// appears in breakdowns even when its count is zero.
type ReferenceRepository interface {
	ListRanks(ctx context.Context) ([]models.Reference, error)
	ListNatures(ctx context.Context) ([]models.Reference, error)
	ListUsages(ctx context.Context) ([]models.Reference, error)
	ListUsageSpecifics(ctx context.Context) ([]models.Reference, error)
	ListNationalities(ctx context.Context) ([]models.Reference, error)
}

type referenceRepository struct {
	db database.Querier
}

// NewReferenceRepository creates a new instance of ReferenceRepository.
func NewReferenceRepository(db database.Querier) ReferenceRepository {
	return &referenceRepository{db: db}
}

// referenceTables is the allowlist of listable tables.
var referenceTables = map[string]bool{
	"rangs":              true,
	"natures":            true,
	"usages":             true,
	"usages_specifiques": true,
	"nationalites":       true,
}

func (r *referenceRepository) list(ctx context.Context, table string) ([]models.Reference, error) {
	if !referenceTables[table] {
		return nil, fmt.Errorf("unknown reference table %q", table)
	}

	query := fmt.Sprintf("SELECT id, nom FROM %s ORDER BY id", table)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	refs := []models.Reference{}
	for rows.Next() {
		var ref models.Reference
		if err := rows.Scan(&ref.ID, &ref.Nom); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", table, err)
	}

	return refs, nil
}

func (r *referenceRepository) ListRanks(ctx context.Context) ([]models.Reference, error) {
	return r.list(ctx, "rangs")
}

func (r *referenceRepository) ListNatures(ctx context.Context) ([]models.Reference, error) {
	return r.list(ctx, "natures")
}

func (r *referenceRepository) ListUsages(ctx context.Context) ([]models.Reference, error) {
	return r.list(ctx, "usages")
}

func (r *referenceRepository) ListUsageSpecifics(ctx context.Context) ([]models.Reference, error) {
	return r.list(ctx, "usages_specifiques")
}

func (r *referenceRepository) ListNationalities(ctx context.Context) ([]models.Reference, error) {
	return r.list(ctx, "nationalites")
}
