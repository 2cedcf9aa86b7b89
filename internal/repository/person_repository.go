package repository

import (
	"context"
	"fmt"

	"github.com/fonciercd/cadastre-api/internal/database"
	"github.com/fonciercd/cadastre-api/internal/models"
)

// PersonRepository defines data access for persons connected to a parcel set
// through one of the four relationship roles, plus hydration of full person
// records for a page of ids.
//
// The role queries deliberately do not deduplicate across each other: the
// same person may come back from several of them, tied to different parcels.
// Merging with role precedence is the union resolver's job.
type PersonRepository interface {
	// Owners returns persons who directly own a parcel of the set.
	Owners(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error)

	// HouseholdHeads returns persons heading a household in a building on
	// a parcel of the set.
	HouseholdHeads(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error)

	// Tenants returns persons renting a building on a parcel of the set.
	Tenants(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error)

	// HouseholdMembers returns non-head members of households in buildings
	// on parcels of the set.
	HouseholdMembers(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error)

	// HydrateByIDs returns full person rows keyed by person id.
	HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.PersonRecord, error)

	// ResponsibleFor returns, for each given person id that is a household
	// member, the concatenated name of their household head. Persons who
	// are not household members are absent from the map.
	ResponsibleFor(ctx context.Context, personIDs []int64) (map[int64]string, error)

	// Demographics returns sex and birth date for the given person ids.
	Demographics(ctx context.Context, ids []int64) ([]models.Demographic, error)

	// CountBySex returns person counts grouped by the stored sex code.
	// Persons with no sex recorded are grouped under the empty string.
	CountBySex(ctx context.Context, ids []int64) (map[string]int, error)
}

type personRepository struct {
	db database.Querier
}

// NewPersonRepository creates a new instance of PersonRepository.
func NewPersonRepository(db database.Querier) PersonRepository {
	return &personRepository{db: db}
}

// Role queries all project (person id, parcel id, person created_at) so the
// union resolver can order the merged set and keep the parcel linkage of the
// winning role.
const (
	ownerRoleQuery = `
SELECT pr.id, p.id, pr.created_at
FROM personnes pr
JOIN parcelles p ON p.proprietaire_id = pr.id
WHERE p.id = ANY($1)`

	headRoleQuery = `
SELECT pr.id, b.parcelle_id, pr.created_at
FROM personnes pr
JOIN menages m ON m.chef_id = pr.id
JOIN batiments b ON b.id = m.batiment_id
WHERE b.parcelle_id = ANY($1)`

	tenantRoleQuery = `
SELECT pr.id, b.parcelle_id, pr.created_at
FROM personnes pr
JOIN locations l ON l.locataire_id = pr.id
JOIN batiments b ON b.id = l.batiment_id
WHERE b.parcelle_id = ANY($1)`

	memberRoleQuery = `
SELECT pr.id, b.parcelle_id, pr.created_at
FROM personnes pr
JOIN membres_menages mm ON mm.personne_id = pr.id
JOIN menages m ON m.id = mm.menage_id
JOIN batiments b ON b.id = m.batiment_id
WHERE b.parcelle_id = ANY($1)`

	individualOnlyCond = "\n  AND pr.type_personne = 1"
)

func (r *personRepository) queryRoleRows(ctx context.Context, query string, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	rows := []models.RoleRow{}
	if len(parcelIDs) == 0 {
		return rows, nil
	}

	if individualsOnly {
		query += individualOnlyCond
	}

	result, err := r.db.Query(ctx, query, parcelIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query role rows: %w", err)
	}
	defer result.Close()

	for result.Next() {
		var row models.RoleRow
		if err := result.Scan(&row.PersonID, &row.ParcelID, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}

	return rows, nil
}

func (r *personRepository) Owners(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	return r.queryRoleRows(ctx, ownerRoleQuery, parcelIDs, individualsOnly)
}

func (r *personRepository) HouseholdHeads(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	return r.queryRoleRows(ctx, headRoleQuery, parcelIDs, individualsOnly)
}

func (r *personRepository) Tenants(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	return r.queryRoleRows(ctx, tenantRoleQuery, parcelIDs, individualsOnly)
}

func (r *personRepository) HouseholdMembers(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	return r.queryRoleRows(ctx, memberRoleQuery, parcelIDs, individualsOnly)
}

func (r *personRepository) HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.PersonRecord, error) {
	records := make(map[int64]models.PersonRecord, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	query := `
SELECT
	pr.id,
	pr.nom,
	pr.postnom,
	pr.prenom,
	pr.alias,
	pr.sexe,
	pr.date_naissance,
	pr.profession,
	pr.etat_civil,
	pr.telephone,
	pr.email,
	n.nom,
	pr.type_personne,
	pr.created_at
FROM personnes pr
LEFT JOIN nationalites n ON n.id = pr.nationalite_id
WHERE pr.id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec models.PersonRecord
		err := rows.Scan(
			&rec.ID,
			&rec.Nom,
			&rec.Postnom,
			&rec.Prenom,
			&rec.Alias,
			&rec.Sexe,
			&rec.DateNaissance,
			&rec.Profession,
			&rec.EtatCivil,
			&rec.Telephone,
			&rec.Email,
			&rec.Nationalite,
			&rec.TypePersonne,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person record: %w", err)
		}
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating person records: %w", err)
	}

	return records, nil
}

func (r *personRepository) ResponsibleFor(ctx context.Context, personIDs []int64) (map[int64]string, error) {
	heads := make(map[int64]string, len(personIDs))
	if len(personIDs) == 0 {
		return heads, nil
	}

	// One lookup keyed by household membership, never a scan over all
	// households.
	query := `
SELECT mm.personne_id, TRIM(CONCAT_WS(' ', ch.nom, ch.postnom, ch.prenom))
FROM membres_menages mm
JOIN menages m ON m.id = mm.menage_id
JOIN personnes ch ON ch.id = m.chef_id
WHERE mm.personne_id = ANY($1)`

	rows, err := r.db.Query(ctx, query, personIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query responsible persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var personID int64
		var name string
		if err := rows.Scan(&personID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan responsible person: %w", err)
		}
		if name != "" {
			heads[personID] = name
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responsible persons: %w", err)
	}

	return heads, nil
}

func (r *personRepository) Demographics(ctx context.Context, ids []int64) ([]models.Demographic, error) {
	demographics := []models.Demographic{}
	if len(ids) == 0 {
		return demographics, nil
	}

	query := `
SELECT pr.id, pr.sexe, pr.date_naissance
FROM personnes pr
WHERE pr.id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query demographics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.Demographic
		if err := rows.Scan(&d.PersonID, &d.Sexe, &d.DateNaissance); err != nil {
			return nil, fmt.Errorf("failed to scan demographic: %w", err)
		}
		demographics = append(demographics, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating demographics: %w", err)
	}

	return demographics, nil
}

func (r *personRepository) CountBySex(ctx context.Context, ids []int64) (map[string]int, error) {
	counts := map[string]int{}
	if len(ids) == 0 {
		return counts, nil
	}

	query := `
SELECT COALESCE(pr.sexe, ''), COUNT(*)
FROM personnes pr
WHERE pr.id = ANY($1)
GROUP BY 1`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count persons by sex: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sexe string
		var count int
		if err := rows.Scan(&sexe, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sex count: %w", err)
		}
		counts[sexe] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sex counts: %w", err)
	}

	return counts, nil
}
