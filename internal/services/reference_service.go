package services

import (
	"context"
	"fmt"

	"github.com/fonciercd/cadastre-api/internal/logger"
	"github.com/fonciercd/cadastre-api/internal/models"
	"github.com/fonciercd/cadastre-api/internal/repository"
)

// ReferenceSet bundles all reference listings consumed by filter dropdowns.
type ReferenceSet struct {
	Rangs             []models.Reference `json:"rangs"`
	Natures           []models.Reference `json:"natures"`
	Usages            []models.Reference `json:"usages"`
	UsagesSpecifiques []models.Reference `json:"usages_specifiques"`
	Nationalites      []models.Reference `json:"nationalites"`
}

// ReferenceService lists the reference tables.
type ReferenceService interface {
	ListAll(ctx context.Context) (*ReferenceSet, error)
}

type referenceService struct {
	repo repository.ReferenceRepository
	log  *logger.Logger
}

// NewReferenceService creates a new instance of ReferenceService.
func NewReferenceService(repo repository.ReferenceRepository, log *logger.Logger) ReferenceService {
	return &referenceService{
		repo: repo,
		log:  log,
	}
}

func (s *referenceService) ListAll(ctx context.Context) (*ReferenceSet, error) {
	set := &ReferenceSet{}

	loaders := []struct {
		name string
		load func() error
	}{
		{"rangs", func() error { var err error; set.Rangs, err = s.repo.ListRanks(ctx); return err }},
		{"natures", func() error { var err error; set.Natures, err = s.repo.ListNatures(ctx); return err }},
		{"usages", func() error { var err error; set.Usages, err = s.repo.ListUsages(ctx); return err }},
		{"usages_specifiques", func() error {
			var err error
			set.UsagesSpecifiques, err = s.repo.ListUsageSpecifics(ctx)
			return err
		}},
		{"nationalites", func() error { var err error; set.Nationalites, err = s.repo.ListNationalities(ctx); return err }},
	}

	for _, l := range loaders {
		if err := l.load(); err != nil {
			s.log.Error("Failed to list references", err, map[string]interface{}{
				"table": l.name,
			})
			return nil, fmt.Errorf("failed to list %s: %w", l.name, err)
		}
	}

	return set, nil
}
