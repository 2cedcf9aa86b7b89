package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fonciercd/cadastre-api/internal/logger"
	"github.com/fonciercd/cadastre-api/internal/models"
	"github.com/fonciercd/cadastre-api/internal/repository"
)

// Labels for buckets that do not come from a reference table.
const (
	labelUndefined    = "Non défini"
	labelUnknown      = "Inconnu"
	labelAccessible   = "Accessible"
	labelInaccessible = "Inaccessible"
	labelMale         = "Masculin"
	labelFemale       = "Féminin"
)

// DashboardStats carries the named scalar totals and grouped breakdowns of
// the dashboard endpoint.
type DashboardStats struct {
	TotalParcelles              int            `json:"total_parcelles"`
	TotalBatiments              int            `json:"total_batiments"`
	TotalPopulation             int            `json:"total_population"`
	TotalMenages                int            `json:"total_menages"`
	TotalLocations              int            `json:"total_locations"`
	ParcellesParRang            map[string]int `json:"parcelles_par_rang"`
	ParcellesParStatut          map[string]int `json:"parcelles_par_statut"`
	BatimentsParNature          map[string]int `json:"batiments_par_nature"`
	BatimentsParUsage           map[string]int `json:"batiments_par_usage"`
	BatimentsParUsageSpecifique map[string]int `json:"batiments_par_usage_specifique"`
	PopulationParSexe           map[string]int `json:"population_par_sexe"`
}

// StatsService computes grouped statistical breakdowns over the filtered
// parcel set and the population connected to it.
type StatsService interface {
	// Dashboard computes the scalar totals and grouped breakdowns for the
	// filtered parcel set.
	Dashboard(ctx context.Context, f models.ParcelFilter) (*DashboardStats, error)

	// AgePyramid bins the filtered population into the fixed age buckets.
	AgePyramid(ctx context.Context, f models.ParcelFilter) ([]models.AgeBucket, error)

	// PopulationByGeography counts the filtered population grouped by
	// geographic unit at the requested level.
	PopulationByGeography(ctx context.Context, f models.ParcelFilter, level repository.GeoLevel) (map[string]int, error)
}

type statsService struct {
	parcels   repository.ParcelRepository
	buildings repository.BuildingRepository
	persons   repository.PersonRepository
	refs      repository.ReferenceRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewStatsService creates a new instance of StatsService.
func NewStatsService(
	parcels repository.ParcelRepository,
	buildings repository.BuildingRepository,
	persons repository.PersonRepository,
	refs repository.ReferenceRepository,
	log *logger.Logger,
) StatsService {
	return &statsService{
		parcels:   parcels,
		buildings: buildings,
		persons:   persons,
		refs:      refs,
		log:       log,
		now:       time.Now,
	}
}

// zeroFillCounts projects id-keyed counts onto reference labels, keeping
// every known reference with a zero count and folding counted ids outside
// the reference set under "Non défini".
func zeroFillCounts(refs []models.Reference, counts map[int64]int) map[string]int {
	out := make(map[string]int, len(refs))
	seen := make(map[int64]bool, len(refs))
	for _, ref := range refs {
		out[ref.Nom] = counts[ref.ID]
		seen[ref.ID] = true
	}
	for id, count := range counts {
		if !seen[id] {
			out[labelUndefined] += count
		}
	}
	return out
}

// statusLabels projects accessibility-status counts onto display labels.
func statusLabels(counts map[int16]int) map[string]int {
	out := map[string]int{
		labelAccessible:   0,
		labelInaccessible: 0,
	}
	for status, count := range counts {
		switch status {
		case models.ParcelStatusAccessible:
			out[labelAccessible] += count
		case models.ParcelStatusInaccessible:
			out[labelInaccessible] += count
		default:
			out[labelUnknown] += count
		}
	}
	return out
}

// sexLabels projects stored sex codes onto display labels.
func sexLabels(counts map[string]int) map[string]int {
	out := map[string]int{
		labelMale:   0,
		labelFemale: 0,
	}
	for code, count := range counts {
		switch code {
		case "M":
			out[labelMale] += count
		case "F":
			out[labelFemale] += count
		default:
			out[labelUnknown] += count
		}
	}
	return out
}

// formatGeoLabel renders a geographic bucket label, attaching the parent name
// when it disambiguates.
func formatGeoLabel(l models.GeoLabel) string {
	if l.Name == "" {
		return labelUndefined
	}
	if l.Parent == "" || l.Parent == l.Name {
		return l.Name
	}
	return fmt.Sprintf("%s (%s)", l.Name, l.Parent)
}

func (s *statsService) Dashboard(ctx context.Context, f models.ParcelFilter) (*DashboardStats, error) {
	parcelIDs, err := s.parcels.ResolveIDs(ctx, f)
	if err != nil {
		s.log.Error("Failed to resolve parcel ids", err, nil)
		return nil, fmt.Errorf("failed to resolve parcel ids: %w", err)
	}

	buildingIDs, err := s.buildings.IDsOnParcels(ctx, parcelIDs)
	if err != nil {
		s.log.Error("Failed to resolve building ids", err, nil)
		return nil, fmt.Errorf("failed to resolve building ids: %w", err)
	}

	stats := &DashboardStats{
		TotalParcelles: len(parcelIDs),
		TotalBatiments: len(buildingIDs),
	}

	// The breakdowns are independent read-only queries; run them
	// concurrently and fail the whole call on the first error.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ranks, err := s.refs.ListRanks(gctx)
		if err != nil {
			return err
		}
		counts, err := s.parcels.CountByRank(gctx, parcelIDs)
		if err != nil {
			return err
		}
		stats.ParcellesParRang = zeroFillCounts(ranks, counts)
		return nil
	})

	g.Go(func() error {
		counts, err := s.parcels.CountByStatus(gctx, parcelIDs)
		if err != nil {
			return err
		}
		stats.ParcellesParStatut = statusLabels(counts)
		return nil
	})

	g.Go(func() error {
		natures, err := s.refs.ListNatures(gctx)
		if err != nil {
			return err
		}
		counts, err := s.buildings.CountByNature(gctx, buildingIDs)
		if err != nil {
			return err
		}
		stats.BatimentsParNature = zeroFillCounts(natures, counts)
		return nil
	})

	g.Go(func() error {
		usages, err := s.refs.ListUsages(gctx)
		if err != nil {
			return err
		}
		counts, err := s.buildings.CountByUsage(gctx, buildingIDs)
		if err != nil {
			return err
		}
		stats.BatimentsParUsage = zeroFillCounts(usages, counts)
		return nil
	})

	g.Go(func() error {
		specifics, err := s.refs.ListUsageSpecifics(gctx)
		if err != nil {
			return err
		}
		counts, err := s.buildings.CountByUsageSpecific(gctx, buildingIDs)
		if err != nil {
			return err
		}
		stats.BatimentsParUsageSpecifique = zeroFillCounts(specifics, counts)
		return nil
	})

	g.Go(func() error {
		count, err := s.buildings.CountHouseholds(gctx, buildingIDs)
		if err != nil {
			return err
		}
		stats.TotalMenages = count
		return nil
	})

	g.Go(func() error {
		count, err := s.buildings.CountRentals(gctx, buildingIDs)
		if err != nil {
			return err
		}
		stats.TotalLocations = count
		return nil
	})

	g.Go(func() error {
		memberships, err := resolvePersonMemberships(gctx, s.persons, parcelIDs, true)
		if err != nil {
			return err
		}
		stats.TotalPopulation = len(memberships)

		personIDs := make([]int64, 0, len(memberships))
		for _, m := range memberships {
			personIDs = append(personIDs, m.PersonID)
		}
		counts, err := s.persons.CountBySex(gctx, personIDs)
		if err != nil {
			return err
		}
		stats.PopulationParSexe = sexLabels(counts)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error("Dashboard aggregation failed", err, nil)
		return nil, fmt.Errorf("dashboard aggregation failed: %w", err)
	}

	return stats, nil
}

func (s *statsService) AgePyramid(ctx context.Context, f models.ParcelFilter) ([]models.AgeBucket, error) {
	parcelIDs, err := s.parcels.ResolveIDs(ctx, f)
	if err != nil {
		s.log.Error("Failed to resolve parcel ids", err, nil)
		return nil, fmt.Errorf("failed to resolve parcel ids: %w", err)
	}

	memberships, err := resolvePersonMemberships(ctx, s.persons, parcelIDs, true)
	if err != nil {
		return nil, err
	}

	personIDs := make([]int64, 0, len(memberships))
	for _, m := range memberships {
		personIDs = append(personIDs, m.PersonID)
	}

	demographics, err := s.persons.Demographics(ctx, personIDs)
	if err != nil {
		s.log.Error("Failed to load demographics", err, map[string]interface{}{
			"person_count": len(personIDs),
		})
		return nil, fmt.Errorf("failed to load demographics: %w", err)
	}

	return BuildAgePyramid(demographics, s.now()), nil
}

func (s *statsService) PopulationByGeography(ctx context.Context, f models.ParcelFilter, level repository.GeoLevel) (map[string]int, error) {
	parcelIDs, err := s.parcels.ResolveIDs(ctx, f)
	if err != nil {
		s.log.Error("Failed to resolve parcel ids", err, nil)
		return nil, fmt.Errorf("failed to resolve parcel ids: %w", err)
	}

	memberships, err := resolvePersonMemberships(ctx, s.persons, parcelIDs, true)
	if err != nil {
		return nil, err
	}

	labels, err := s.parcels.GeographyByIDs(ctx, parcelIDs, level)
	if err != nil {
		return nil, err
	}

	// Each person counts once, under the geographic unit of their winning
	// role's parcel.
	counts := map[string]int{}
	for _, m := range memberships {
		counts[formatGeoLabel(labels[m.ParcelID])]++
	}

	return counts, nil
}
