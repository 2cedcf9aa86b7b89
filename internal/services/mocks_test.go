package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fonciercd/cadastre-api/internal/models"
	"github.com/fonciercd/cadastre-api/internal/repository"
)

// MockParcelRepository is a mock implementation of repository.ParcelRepository for testing
type MockParcelRepository struct {
	mock.Mock
}

func (m *MockParcelRepository) ResolveIDs(ctx context.Context, f models.ParcelFilter) ([]int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockParcelRepository) FindByID(ctx context.Context, id int64) (*models.ParcelRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParcelRecord), args.Error(1)
}

func (m *MockParcelRepository) HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.ParcelRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.ParcelRecord), args.Error(1)
}

func (m *MockParcelRepository) AddressChains(ctx context.Context, ids []int64) (map[int64]models.AddressChain, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.AddressChain), args.Error(1)
}

func (m *MockParcelRepository) GeographyByIDs(ctx context.Context, ids []int64, level repository.GeoLevel) (map[int64]models.GeoLabel, error) {
	args := m.Called(ctx, ids, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.GeoLabel), args.Error(1)
}

func (m *MockParcelRepository) CountByRank(ctx context.Context, ids []int64) (map[int64]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockParcelRepository) CountByStatus(ctx context.Context, ids []int64) (map[int16]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int16]int), args.Error(1)
}

func (m *MockParcelRepository) FeaturesByIDs(ctx context.Context, ids []int64) ([]models.ParcelFeature, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ParcelFeature), args.Error(1)
}

// MockPersonRepository is a mock implementation of repository.PersonRepository for testing
type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) Owners(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	args := m.Called(ctx, parcelIDs, individualsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoleRow), args.Error(1)
}

func (m *MockPersonRepository) HouseholdHeads(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	args := m.Called(ctx, parcelIDs, individualsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoleRow), args.Error(1)
}

func (m *MockPersonRepository) Tenants(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	args := m.Called(ctx, parcelIDs, individualsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoleRow), args.Error(1)
}

func (m *MockPersonRepository) HouseholdMembers(ctx context.Context, parcelIDs []int64, individualsOnly bool) ([]models.RoleRow, error) {
	args := m.Called(ctx, parcelIDs, individualsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoleRow), args.Error(1)
}

func (m *MockPersonRepository) HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.PersonRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.PersonRecord), args.Error(1)
}

func (m *MockPersonRepository) ResponsibleFor(ctx context.Context, personIDs []int64) (map[int64]string, error) {
	args := m.Called(ctx, personIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]string), args.Error(1)
}

func (m *MockPersonRepository) Demographics(ctx context.Context, ids []int64) ([]models.Demographic, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Demographic), args.Error(1)
}

func (m *MockPersonRepository) CountBySex(ctx context.Context, ids []int64) (map[string]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockBuildingRepository is a mock implementation of repository.BuildingRepository for testing
type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) ResolveIDs(ctx context.Context, f models.BuildingFilter) ([]int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockBuildingRepository) IDsOnParcels(ctx context.Context, parcelIDs []int64) ([]int64, error) {
	args := m.Called(ctx, parcelIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockBuildingRepository) FindByID(ctx context.Context, id int64) (*models.BuildingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildingRecord), args.Error(1)
}

func (m *MockBuildingRepository) HydrateByIDs(ctx context.Context, ids []int64) (map[int64]models.BuildingRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.BuildingRecord), args.Error(1)
}

func (m *MockBuildingRepository) CountByNature(ctx context.Context, ids []int64) (map[int64]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockBuildingRepository) CountByUsage(ctx context.Context, ids []int64) (map[int64]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockBuildingRepository) CountByUsageSpecific(ctx context.Context, ids []int64) (map[int64]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockBuildingRepository) CountHouseholds(ctx context.Context, ids []int64) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockBuildingRepository) CountRentals(ctx context.Context, ids []int64) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

// MockReferenceRepository is a mock implementation of repository.ReferenceRepository for testing
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ListRanks(ctx context.Context) ([]models.Reference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reference), args.Error(1)
}

func (m *MockReferenceRepository) ListNatures(ctx context.Context) ([]models.Reference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reference), args.Error(1)
}

func (m *MockReferenceRepository) ListUsages(ctx context.Context) ([]models.Reference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reference), args.Error(1)
}

func (m *MockReferenceRepository) ListUsageSpecifics(ctx context.Context) ([]models.Reference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reference), args.Error(1)
}

func (m *MockReferenceRepository) ListNationalities(ctx context.Context) ([]models.Reference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reference), args.Error(1)
}
