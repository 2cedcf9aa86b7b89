package services

import (
	"context"
	"fmt"

	"github.com/fonciercd/cadastre-api/internal/logger"
	"github.com/fonciercd/cadastre-api/internal/models"
	"github.com/fonciercd/cadastre-api/internal/repository"
)

// BuildingPage is one page of the filtered building set.
type BuildingPage struct {
	Data     []models.BuildingRecord `json:"data"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// BuildingService exposes the filtered building set.
type BuildingService interface {
	// List returns one page of the buildings matching the filter.
	List(ctx context.Context, f models.BuildingFilter, page, pageSize int) (*BuildingPage, error)

	// Get returns one building. Returns ErrBuildingNotFound when the id
	// does not exist.
	Get(ctx context.Context, id int64) (*models.BuildingRecord, error)
}

type buildingService struct {
	repo repository.BuildingRepository
	log  *logger.Logger
}

// NewBuildingService creates a new instance of BuildingService.
func NewBuildingService(repo repository.BuildingRepository, log *logger.Logger) BuildingService {
	return &buildingService{
		repo: repo,
		log:  log,
	}
}

func (s *buildingService) List(ctx context.Context, f models.BuildingFilter, page, pageSize int) (*BuildingPage, error) {
	if _, _, err := pageBounds(0, page, pageSize); err != nil {
		return nil, err
	}

	ids, err := s.repo.ResolveIDs(ctx, f)
	if err != nil {
		s.log.Error("Failed to resolve building ids", err, nil)
		return nil, fmt.Errorf("failed to resolve building ids: %w", err)
	}

	total := len(ids)
	lo, hi, err := pageBounds(total, page, pageSize)
	if err != nil {
		return nil, err
	}

	pageIDs := ids[lo:hi]
	records, err := s.repo.HydrateByIDs(ctx, pageIDs)
	if err != nil {
		s.log.Error("Failed to hydrate buildings", err, map[string]interface{}{
			"count": len(pageIDs),
		})
		return nil, fmt.Errorf("failed to hydrate buildings: %w", err)
	}

	data := make([]models.BuildingRecord, 0, len(pageIDs))
	for _, id := range pageIDs {
		if rec, ok := records[id]; ok {
			data = append(data, rec)
		}
	}

	s.log.Info("Building page materialized", map[string]interface{}{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"returned":  len(data),
	})

	return &BuildingPage{
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *buildingService) Get(ctx context.Context, id int64) (*models.BuildingRecord, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query building", err, map[string]interface{}{
			"building_id": id,
		})
		return nil, fmt.Errorf("failed to query building: %w", err)
	}
	if rec == nil {
		return nil, ErrBuildingNotFound
	}
	return rec, nil
}
