package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fonciercd/cadastre-api/internal/database"
	"github.com/fonciercd/cadastre-api/internal/models"
)

// BuildingRepository defines data access for buildings: filter resolution to
// an ordered id set, record hydration, and the grouped counts backing the
// dashboard breakdowns.
type BuildingRepository interface {
	// ResolveIDs returns the distinct ids of all buildings matching the
	// filter, ordered by id descending.
	ResolveIDs(ctx context.Context, f models.BuildingFilter) ([]int64, error)

	// IDsOnParcels returns the ids of all buildings standing on the given
	// parcels, ordered by id descending.
	IDsOnParcels(ctx context.Context, parcelIDs []int64) ([]int64, error)

	// FindByID returns the full record for one building.
	// Returns nil, nil when the building does not exist.
	FindByID(ctx context.Context, id int64) (*models.BuildingRecord, error)

	// HydrateByIDs returns full records keyed by building id.
	HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.BuildingRecord, error)

	// CountByNature returns building counts grouped by nature id,
	// with id 0 for buildings lacking one.
	CountByNature(ctx context.Context, ids []int64) (map[int64]int, error)

	// CountByUsage returns building counts grouped by usage id.
	CountByUsage(ctx context.Context, ids []int64) (map[int64]int, error)

	// CountByUsageSpecific returns building counts grouped by specific
	// usage id.
	CountByUsageSpecific(ctx context.Context, ids []int64) (map[int64]int, error)

	// CountHouseholds returns the number of households in the buildings.
	CountHouseholds(ctx context.Context, ids []int64) (int, error)

	// CountRentals returns the number of rental records on the buildings.
	CountRentals(ctx context.Context, ids []int64) (int, error)
}

type buildingRepository struct {
	db database.Querier
}

// NewBuildingRepository creates a new instance of BuildingRepository.
func NewBuildingRepository(db database.Querier) BuildingRepository {
	return &buildingRepository{db: db}
}

// buildBuildingIDQuery assembles the id-resolution query for a building
// filter. Geographic criteria travel through the building's parcel.
func buildBuildingIDQuery(f models.BuildingFilter) (string, []any) {
	var q filterQuery
	var sb strings.Builder

	sb.WriteString("SELECT DISTINCT b.id\nFROM batiments b\nJOIN parcelles p ON p.id = b.parcelle_id")
	sb.WriteString(`
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
LEFT JOIN communes c ON c.id = q.commune_id
LEFT JOIN villes v ON v.id = c.ville_id`)
	if f.Keyword != "" {
		sb.WriteString("\nLEFT JOIN personnes pr ON pr.id = p.proprietaire_id")
	}

	appendParcelConds(&q, f.ParcelFilter)
	if f.NatureID != nil {
		q.where("b.nature_id = $%d", *f.NatureID)
	}

	sb.WriteString(q.clause())
	sb.WriteString("\nORDER BY b.id DESC")

	return sb.String(), q.args
}

func (r *buildingRepository) ResolveIDs(ctx context.Context, f models.BuildingFilter) ([]int64, error) {
	query, args := buildBuildingIDQuery(f)
	return r.queryIDs(ctx, query, args...)
}

func (r *buildingRepository) IDsOnParcels(ctx context.Context, parcelIDs []int64) ([]int64, error) {
	if len(parcelIDs) == 0 {
		return []int64{}, nil
	}

	query := `
SELECT b.id
FROM batiments b
WHERE b.parcelle_id = ANY($1)
ORDER BY b.id DESC`

	return r.queryIDs(ctx, query, parcelIDs)
}

func (r *buildingRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve building ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan building id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating building ids: %w", err)
	}

	return ids, nil
}

const buildingRecordSelect = `
SELECT
	b.id,
	b.parcelle_id,
	n.nom,
	u.nom,
	us.nom,
	NULLIF(TRIM(CONCAT_WS(' ', oc.nom, oc.postnom, oc.prenom)), ''),
	a.numero,
	av.nom,
	q.nom,
	c.nom,
	b.superficie,
	b.superficie_corrigee,
	b.created_at
FROM batiments b
JOIN parcelles p ON p.id = b.parcelle_id
LEFT JOIN natures n ON n.id = b.nature_id
LEFT JOIN usages u ON u.id = b.usage_id
LEFT JOIN usages_specifiques us ON us.id = b.usage_specifique_id
LEFT JOIN personnes oc ON oc.id = b.occupant_id
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
LEFT JOIN communes c ON c.id = q.commune_id`

func scanBuildingRecord(row pgx.Row) (models.BuildingRecord, error) {
	var rec models.BuildingRecord
	err := row.Scan(
		&rec.ID,
		&rec.ParcelleID,
		&rec.Nature,
		&rec.Usage,
		&rec.UsageSpecifique,
		&rec.Occupant,
		&rec.Adresse.Numero,
		&rec.Adresse.Avenue,
		&rec.Adresse.Quartier,
		&rec.Adresse.Commune,
		&rec.Superficie,
		&rec.SuperficieCorrigee,
		&rec.CreatedAt,
	)
	return rec, err
}

func (r *buildingRepository) FindByID(ctx context.Context, id int64) (*models.BuildingRecord, error) {
	query := buildingRecordSelect + "\nWHERE b.id = $1"

	rec, err := scanBuildingRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query building %d: %w", id, err)
	}

	return &rec, nil
}

func (r *buildingRepository) HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.BuildingRecord, error) {
	records := make(map[int64]models.BuildingRecord, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	query := buildingRecordSelect + "\nWHERE b.id = ANY($1)"

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate buildings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanBuildingRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan building record: %w", err)
		}
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating building records: %w", err)
	}

	return records, nil
}

// classificationColumns is the allowlist of groupable building columns.
var classificationColumns = map[string]string{
	"nature":           "b.nature_id",
	"usage":            "b.usage_id",
	"usage_specifique": "b.usage_specifique_id",
}

func (r *buildingRepository) countByColumn(ctx context.Context, column string, ids []int64) (map[int64]int, error) {
	counts := map[int64]int{}
	if len(ids) == 0 {
		return counts, nil
	}

	col, ok := classificationColumns[column]
	if !ok {
		return nil, fmt.Errorf("unknown classification column %q", column)
	}

	query := fmt.Sprintf(`
SELECT COALESCE(%s, 0), COUNT(*)
FROM batiments b
WHERE b.id = ANY($1)
GROUP BY 1`, col)

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count buildings by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var refID int64
		var count int
		if err := rows.Scan(&refID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		counts[refID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s counts: %w", column, err)
	}

	return counts, nil
}

func (r *buildingRepository) CountByNature(ctx context.Context, ids []int64) (map[int64]int, error) {
	return r.countByColumn(ctx, "nature", ids)
}

func (r *buildingRepository) CountByUsage(ctx context.Context, ids []int64) (map[int64]int, error) {
	return r.countByColumn(ctx, "usage", ids)
}

func (r *buildingRepository) CountByUsageSpecific(ctx context.Context, ids []int64) (map[int64]int, error) {
	return r.countByColumn(ctx, "usage_specifique", ids)
}

func (r *buildingRepository) CountHouseholds(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	query := "SELECT COUNT(*) FROM menages m WHERE m.batiment_id = ANY($1)"
	if err := r.db.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count households: %w", err)
	}

	return count, nil
}

func (r *buildingRepository) CountRentals(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	query := "SELECT COUNT(*) FROM locations l WHERE l.batiment_id = ANY($1)"
	if err := r.db.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rentals: %w", err)
	}

	return count, nil
}
