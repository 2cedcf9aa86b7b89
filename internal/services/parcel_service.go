package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fonciercd/cadastre-api/internal/logger"
	"github.com/fonciercd/cadastre-api/internal/models"
	"github.com/fonciercd/cadastre-api/internal/repository"
)

// Service-level errors.
var (
	ErrParcelNotFound   = errors.New("parcel not found")
	ErrBuildingNotFound = errors.New("building not found")
)

// ParcelPage is one page of the filtered parcel set.
type ParcelPage struct {
	Data     []models.ParcelRecord `json:"data"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// ParcelService exposes the filtered parcel set: paginated listing, single
// record lookup and geometry export.
type ParcelService interface {
	// List returns one page of the parcels matching the filter.
	List(ctx context.Context, f models.ParcelFilter, page, pageSize int) (*ParcelPage, error)

	// Get returns one parcel. Returns ErrParcelNotFound when the id does
	// not exist.
	Get(ctx context.Context, id int64) (*models.ParcelRecord, error)

	// Features returns the geometries of all parcels matching the filter.
	Features(ctx context.Context, f models.ParcelFilter) ([]models.ParcelFeature, error)
}

type parcelService struct {
	repo repository.ParcelRepository
	log  *logger.Logger
}

// NewParcelService creates a new instance of ParcelService.
func NewParcelService(repo repository.ParcelRepository, log *logger.Logger) ParcelService {
	return &parcelService{
		repo: repo,
		log:  log,
	}
}

func (s *parcelService) List(ctx context.Context, f models.ParcelFilter, page, pageSize int) (*ParcelPage, error) {
	if _, _, err := pageBounds(0, page, pageSize); err != nil {
		return nil, err
	}

	ids, err := s.repo.ResolveIDs(ctx, f)
	if err != nil {
		s.log.Error("Failed to resolve parcel ids", err, nil)
		return nil, fmt.Errorf("failed to resolve parcel ids: %w", err)
	}

	total := len(ids)
	lo, hi, err := pageBounds(total, page, pageSize)
	if err != nil {
		return nil, err
	}

	pageIDs := ids[lo:hi]
	records, err := s.repo.HydrateByIDs(ctx, pageIDs)
	if err != nil {
		s.log.Error("Failed to hydrate parcels", err, map[string]interface{}{
			"count": len(pageIDs),
		})
		return nil, fmt.Errorf("failed to hydrate parcels: %w", err)
	}

	data := make([]models.ParcelRecord, 0, len(pageIDs))
	for _, id := range pageIDs {
		if rec, ok := records[id]; ok {
			data = append(data, rec)
		}
	}

	s.log.Info("Parcel page materialized", map[string]interface{}{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"returned":  len(data),
	})

	return &ParcelPage{
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *parcelService) Get(ctx context.Context, id int64) (*models.ParcelRecord, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query parcel", err, map[string]interface{}{
			"parcel_id": id,
		})
		return nil, fmt.Errorf("failed to query parcel: %w", err)
	}
	if rec == nil {
		return nil, ErrParcelNotFound
	}
	return rec, nil
}

func (s *parcelService) Features(ctx context.Context, f models.ParcelFilter) ([]models.ParcelFeature, error) {
	ids, err := s.repo.ResolveIDs(ctx, f)
	if err != nil {
		s.log.Error("Failed to resolve parcel ids", err, nil)
		return nil, fmt.Errorf("failed to resolve parcel ids: %w", err)
	}

	features, err := s.repo.FeaturesByIDs(ctx, ids)
	if err != nil {
		s.log.Error("Failed to load parcel geometries", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, fmt.Errorf("failed to load parcel geometries: %w", err)
	}

	return features, nil
}
