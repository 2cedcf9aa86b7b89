package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/fonciercd/cadastre-api/internal/database"
	"github.com/fonciercd/cadastre-api/internal/models"
)

// GeoLevel selects the geographic grouping axis for population breakdowns.
type GeoLevel string

const (
	GeoLevelQuartier GeoLevel = "quartier"
	GeoLevelCommune  GeoLevel = "commune"
	GeoLevelAvenue   GeoLevel = "avenue"
)

// ErrUnknownGeoLevel is returned for a grouping axis outside the known set.
var ErrUnknownGeoLevel = errors.New("unknown geographic level")

// ParcelRepository defines data access for parcels: filter resolution down to
// an ordered id set, record hydration for a page of ids, and the grouped
// counts consumed by the aggregation layer.
type ParcelRepository interface {
	// ResolveIDs returns the distinct ids of all parcels matching the
	// filter, ordered by id descending. No filters means all parcels.
	ResolveIDs(ctx context.Context, f models.ParcelFilter) ([]int64, error)

	// FindByID returns the full record for one parcel.
	// Returns nil, nil when the parcel does not exist.
	FindByID(ctx context.Context, id int64) (*models.ParcelRecord, error)

	// HydrateByIDs returns full records keyed by parcel id for the given
	// id set. Ids with no backing row are simply absent from the map.
	HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.ParcelRecord, error)

	// AddressChains returns the resolved address hierarchy per parcel id.
	AddressChains(ctx context.Context, ids []int64) (map[int64]models.AddressChain, error)

	// GeographyByIDs maps each parcel id to the name of its geographic
	// unit at the requested level, with the parent unit's name attached.
	GeographyByIDs(ctx context.Context, ids []int64, level GeoLevel) (map[int64]models.GeoLabel, error)

	// CountByRank returns parcel counts grouped by rank id. Parcels with
	// no rank are grouped under id 0.
	CountByRank(ctx context.Context, ids []int64) (map[int64]int, error)

	// CountByStatus returns parcel counts grouped by accessibility status.
	CountByStatus(ctx context.Context, ids []int64) (map[int16]int, error)

	// FeaturesByIDs returns decoded geometries with display properties for
	// parcels that carry one, ordered by id descending.
	FeaturesByIDs(ctx context.Context, ids []int64) ([]models.ParcelFeature, error)
}

type parcelRepository struct {
	db database.Querier
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db database.Querier) ParcelRepository {
	return &parcelRepository{db: db}
}

// filterQuery accumulates parameterized WHERE conditions. Conditions receive
// their placeholder number at append time so arguments and placeholders can
// never drift apart.
type filterQuery struct {
	conds []string
	args  []any
}

// where appends a condition. expr must contain a %d verb (or indexed %[1]d
// verbs) for the placeholder number of value.
func (q *filterQuery) where(expr string, value any) {
	q.args = append(q.args, value)
	q.conds = append(q.conds, fmt.Sprintf(expr, len(q.args)))
}

func (q *filterQuery) clause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(q.conds, "\n  AND ")
}

// parcelJoinChain walks parcel -> address -> avenue -> quartier -> commune ->
// ville so any geographic level can be tested by id equality. Left joins keep
// parcels with an incomplete chain in the unfiltered set.
const parcelJoinChain = `
FROM parcelles p
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
LEFT JOIN communes c ON c.id = q.commune_id
LEFT JOIN villes v ON v.id = c.ville_id`

// appendParcelConds translates a ParcelFilter into WHERE conditions against
// the aliases of parcelJoinChain.
func appendParcelConds(q *filterQuery, f models.ParcelFilter) {
	if f.AvenueID != nil {
		q.where("av.id = $%d", *f.AvenueID)
	}
	if f.QuartierID != nil {
		q.where("q.id = $%d", *f.QuartierID)
	}
	if f.CommuneID != nil {
		q.where("c.id = $%d", *f.CommuneID)
	}
	if f.VilleID != nil {
		q.where("v.id = $%d", *f.VilleID)
	}
	if f.ProvinceID != nil {
		q.where("v.province_id = $%d", *f.ProvinceID)
	}
	if f.RangID != nil {
		q.where("p.rang_id = $%d", *f.RangID)
	}
	// Bounds apply to the date component of created_at, both inclusive,
	// regardless of the stored time of day.
	if f.DateStart != nil {
		q.where("p.created_at >= $%d::date", f.DateStart.Format("2006-01-02"))
	}
	if f.DateEnd != nil {
		q.where("p.created_at < $%d::date + interval '1 day'", f.DateEnd.Format("2006-01-02"))
	}
	if f.Keyword != "" {
		q.where(
			"(pr.nom ILIKE $%[1]d OR pr.postnom ILIKE $%[1]d OR pr.prenom ILIKE $%[1]d OR pr.alias ILIKE $%[1]d)",
			"%"+f.Keyword+"%",
		)
	}
}

// buildParcelIDQuery assembles the id-resolution query for a filter.
func buildParcelIDQuery(f models.ParcelFilter) (string, []any) {
	var q filterQuery
	var sb strings.Builder

	sb.WriteString("SELECT DISTINCT p.id")
	sb.WriteString(parcelJoinChain)
	if f.Keyword != "" {
		sb.WriteString("\nLEFT JOIN personnes pr ON pr.id = p.proprietaire_id")
	}

	appendParcelConds(&q, f)

	sb.WriteString(q.clause())
	sb.WriteString("\nORDER BY p.id DESC")

	return sb.String(), q.args
}

func (r *parcelRepository) ResolveIDs(ctx context.Context, f models.ParcelFilter) ([]int64, error) {
	query, args := buildParcelIDQuery(f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parcel ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan parcel id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel ids: %w", err)
	}

	return ids, nil
}

const parcelRecordSelect = `
SELECT
	p.id,
	a.numero,
	av.nom,
	q.nom,
	c.nom,
	NULLIF(TRIM(CONCAT_WS(' ', pr.nom, pr.postnom, pr.prenom)), ''),
	r.nom,
	p.statut,
	p.superficie,
	p.superficie_corrigee,
	(SELECT COUNT(*) FROM batiments b WHERE b.parcelle_id = p.id),
	p.created_at
FROM parcelles p
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
LEFT JOIN communes c ON c.id = q.commune_id
LEFT JOIN personnes pr ON pr.id = p.proprietaire_id
LEFT JOIN rangs r ON r.id = p.rang_id`

func scanParcelRecord(row pgx.Row) (models.ParcelRecord, error) {
	var rec models.ParcelRecord
	err := row.Scan(
		&rec.ID,
		&rec.Adresse.Numero,
		&rec.Adresse.Avenue,
		&rec.Adresse.Quartier,
		&rec.Adresse.Commune,
		&rec.Proprietaire,
		&rec.Rang,
		&rec.Statut,
		&rec.Superficie,
		&rec.SuperficieCorrigee,
		&rec.NombreBatiments,
		&rec.CreatedAt,
	)
	return rec, err
}

func (r *parcelRepository) FindByID(ctx context.Context, id int64) (*models.ParcelRecord, error) {
	query := parcelRecordSelect + "\nWHERE p.id = $1"

	rec, err := scanParcelRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query parcel %d: %w", id, err)
	}

	return &rec, nil
}

func (r *parcelRepository) HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.ParcelRecord, error) {
	records := make(map[int64]models.ParcelRecord, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	query := parcelRecordSelect + "\nWHERE p.id = ANY($1)"

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate parcels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanParcelRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parcel record: %w", err)
		}
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel records: %w", err)
	}

	return records, nil
}

func (r *parcelRepository) AddressChains(ctx context.Context, ids []int64) (map[int64]models.AddressChain, error) {
	chains := make(map[int64]models.AddressChain, len(ids))
	if len(ids) == 0 {
		return chains, nil
	}

	query := `
SELECT p.id, a.numero, av.nom, q.nom, c.nom
FROM parcelles p
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
LEFT JOIN communes c ON c.id = q.commune_id
WHERE p.id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query address chains: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var chain models.AddressChain
		if err := rows.Scan(&id, &chain.Numero, &chain.Avenue, &chain.Quartier, &chain.Commune); err != nil {
			return nil, fmt.Errorf("failed to scan address chain: %w", err)
		}
		chains[id] = chain
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating address chains: %w", err)
	}

	return chains, nil
}

func (r *parcelRepository) GeographyByIDs(ctx context.Context, ids []int64, level GeoLevel) (map[int64]models.GeoLabel, error) {
	labels := make(map[int64]models.GeoLabel, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	var query string
	switch level {
	case GeoLevelQuartier:
		query = `
SELECT p.id, COALESCE(q.nom, ''), COALESCE(c.nom, '')
FROM parcelles p
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
LEFT JOIN communes c ON c.id = q.commune_id
WHERE p.id = ANY($1)`
	case GeoLevelCommune:
		query = `
SELECT p.id, COALESCE(c.nom, ''), COALESCE(v.nom, '')
FROM parcelles p
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
LEFT JOIN communes c ON c.id = q.commune_id
LEFT JOIN villes v ON v.id = c.ville_id
WHERE p.id = ANY($1)`
	case GeoLevelAvenue:
		query = `
SELECT p.id, COALESCE(av.nom, ''), COALESCE(q.nom, '')
FROM parcelles p
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN quartiers q ON q.id = av.quartier_id
WHERE p.id = ANY($1)`
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGeoLevel, level)
	}

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel geography: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var label models.GeoLabel
		if err := rows.Scan(&id, &label.Name, &label.Parent); err != nil {
			return nil, fmt.Errorf("failed to scan parcel geography: %w", err)
		}
		labels[id] = label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel geography: %w", err)
	}

	return labels, nil
}

func (r *parcelRepository) CountByRank(ctx context.Context, ids []int64) (map[int64]int, error) {
	counts := map[int64]int{}
	if len(ids) == 0 {
		return counts, nil
	}

	query := `
SELECT COALESCE(p.rang_id, 0), COUNT(*)
FROM parcelles p
WHERE p.id = ANY($1)
GROUP BY 1`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count parcels by rank: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rankID int64
		var count int
		if err := rows.Scan(&rankID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rank count: %w", err)
		}
		counts[rankID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank counts: %w", err)
	}

	return counts, nil
}

func (r *parcelRepository) CountByStatus(ctx context.Context, ids []int64) (map[int16]int, error) {
	counts := map[int16]int{}
	if len(ids) == 0 {
		return counts, nil
	}

	query := `
SELECT COALESCE(p.statut, 0), COUNT(*)
FROM parcelles p
WHERE p.id = ANY($1)
GROUP BY 1`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count parcels by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status int16
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

func (r *parcelRepository) FeaturesByIDs(ctx context.Context, ids []int64) ([]models.ParcelFeature, error) {
	features := []models.ParcelFeature{}
	if len(ids) == 0 {
		return features, nil
	}

	query := `
SELECT p.id, ST_AsGeoJSON(p.geom), a.numero, av.nom, r.nom
FROM parcelles p
LEFT JOIN adresses a ON a.id = p.adresse_id
LEFT JOIN avenues av ON av.id = a.avenue_id
LEFT JOIN rangs r ON r.id = p.rang_id
WHERE p.id = ANY($1) AND p.geom IS NOT NULL
ORDER BY p.id DESC`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel geometries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var geomJSON []byte
		var numero, avenue, rang *string
		if err := rows.Scan(&id, &geomJSON, &numero, &avenue, &rang); err != nil {
			return nil, fmt.Errorf("failed to scan parcel geometry: %w", err)
		}

		var g geojson.Geometry
		if err := json.Unmarshal(geomJSON, &g); err != nil {
			return nil, fmt.Errorf("failed to parse geometry for parcel %d: %w", id, err)
		}
		decoded, err := g.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode geometry for parcel %d: %w", id, err)
		}

		features = append(features, models.ParcelFeature{
			ID:       id,
			Geometry: decoded,
			Properties: map[string]interface{}{
				"numero": numero,
				"avenue": avenue,
				"rang":   rang,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel geometries: %w", err)
	}

	return features, nil
}
