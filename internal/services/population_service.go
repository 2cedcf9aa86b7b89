package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fonciercd/cadastre-api/internal/logger"
	"github.com/fonciercd/cadastre-api/internal/models"
	"github.com/fonciercd/cadastre-api/internal/repository"
)

// PopulationPage is one page of the filtered population with the invariant
// total of the whole filtered set.
type PopulationPage struct {
	Data     []models.PopulationRecord `json:"data"`
	Total    int                       `json:"total"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"page_size"`
}

// PopulationService exposes the filtered population: the persons connected to
// the filtered parcel set through any relationship role, deduplicated, with a
// single reported category each.
type PopulationService interface {
	// List returns one page of the filtered population.
	// Returns ErrInvalidPage or ErrInvalidPageSize for out-of-range
	// pagination parameters.
	List(ctx context.Context, f models.ParcelFilter, page, pageSize int) (*PopulationPage, error)

	// ListAll returns the whole filtered population without pagination,
	// for export.
	ListAll(ctx context.Context, f models.ParcelFilter) ([]models.PopulationRecord, error)
}

type populationService struct {
	parcels repository.ParcelRepository
	persons repository.PersonRepository
	log     *logger.Logger
}

// NewPopulationService creates a new instance of PopulationService.
func NewPopulationService(parcels repository.ParcelRepository, persons repository.PersonRepository, log *logger.Logger) PopulationService {
	return &populationService{
		parcels: parcels,
		persons: persons,
		log:     log,
	}
}

func (s *populationService) List(ctx context.Context, f models.ParcelFilter, page, pageSize int) (*PopulationPage, error) {
	// Reject bad pagination before any storage work.
	if _, _, err := pageBounds(0, page, pageSize); err != nil {
		return nil, err
	}

	memberships, err := s.resolveMemberships(ctx, f)
	if err != nil {
		return nil, err
	}

	total := len(memberships)
	lo, hi, err := pageBounds(total, page, pageSize)
	if err != nil {
		return nil, err
	}

	records, err := s.materialize(ctx, memberships[lo:hi])
	if err != nil {
		return nil, err
	}

	s.log.Info("Population page materialized", map[string]interface{}{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"returned":  len(records),
	})

	return &PopulationPage{
		Data:     records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *populationService) ListAll(ctx context.Context, f models.ParcelFilter) ([]models.PopulationRecord, error) {
	memberships, err := s.resolveMemberships(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.materialize(ctx, memberships)
}

func (s *populationService) resolveMemberships(ctx context.Context, f models.ParcelFilter) ([]personMembership, error) {
	parcelIDs, err := s.parcels.ResolveIDs(ctx, f)
	if err != nil {
		s.log.Error("Failed to resolve parcel ids", err, nil)
		return nil, fmt.Errorf("failed to resolve parcel ids: %w", err)
	}

	memberships, err := resolvePersonMemberships(ctx, s.persons, parcelIDs, true)
	if err != nil {
		s.log.Error("Failed to resolve person memberships", err, map[string]interface{}{
			"parcel_count": len(parcelIDs),
		})
		return nil, err
	}

	return memberships, nil
}

// materialize hydrates full records for a slice of the membership set, in the
// set's order. A failed lookup for one record degrades that record's optional
// fields to null instead of failing the page.
func (s *populationService) materialize(ctx context.Context, page []personMembership) ([]models.PopulationRecord, error) {
	records := make([]models.PopulationRecord, 0, len(page))
	if len(page) == 0 {
		return records, nil
	}

	personIDs := make([]int64, 0, len(page))
	parcelIDs := make([]int64, 0, len(page))
	memberIDs := []int64{}
	for _, m := range page {
		personIDs = append(personIDs, m.PersonID)
		parcelIDs = append(parcelIDs, m.ParcelID)
		if m.Role == RoleMember {
			memberIDs = append(memberIDs, m.PersonID)
		}
	}

	persons, err := s.persons.HydrateByIDs(ctx, personIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate persons: %w", err)
	}

	chains, err := s.parcels.AddressChains(ctx, parcelIDs)
	if err != nil {
		s.log.Warn("Address resolution failed, degrading to null addresses", map[string]interface{}{
			"error": err.Error(),
		})
		chains = map[int64]models.AddressChain{}
	}

	// Only household members carry a responsible person, resolved with one
	// lookup keyed by their membership.
	responsibles := map[int64]string{}
	if len(memberIDs) > 0 {
		responsibles, err = s.persons.ResponsibleFor(ctx, memberIDs)
		if err != nil {
			s.log.Warn("Responsible lookup failed, degrading to null", map[string]interface{}{
				"error": err.Error(),
			})
			responsibles = map[int64]string{}
		}
	}

	for _, m := range page {
		rec := models.PopulationRecord{
			ID:        m.PersonID,
			Categorie: m.Role.Label(),
			Adresse:   chains[m.ParcelID],
		}

		if p, ok := persons[m.PersonID]; ok {
			rec.Nom = p.Nom
			rec.Postnom = p.Postnom
			rec.Prenom = p.Prenom
			rec.Alias = p.Alias
			rec.Sexe = p.Sexe
			rec.Profession = p.Profession
			rec.EtatCivil = p.EtatCivil
			rec.Telephone = p.Telephone
			rec.Email = p.Email
			rec.Nationalite = p.Nationalite
			rec.CreatedAt = p.CreatedAt
			if p.DateNaissance != nil {
				birth := p.DateNaissance.Format(time.DateOnly)
				rec.DateNaissance = &birth
			}
		}

		if m.Role == RoleMember {
			if name, ok := responsibles[m.PersonID]; ok {
				rec.Responsable = &name
			}
		}

		records = append(records, rec)
	}

	return records, nil
}
