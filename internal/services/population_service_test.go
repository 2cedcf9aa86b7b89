package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fonciercd/cadastre-api/internal/logger"
	"github.com/fonciercd/cadastre-api/internal/models"
)

func TestPopulationList_Success(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()
	filter := models.ParcelFilter{}
	parcelIDs := []int64{10, 20}
	created := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	mockParcels.On("ResolveIDs", ctx, filter).Return(parcelIDs, nil)
	mockPersons.On("Owners", ctx, parcelIDs, true).Return([]models.RoleRow{
		{PersonID: 1, ParcelID: 10, CreatedAt: created},
	}, nil)
	mockPersons.On("HouseholdHeads", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("Tenants", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HouseholdMembers", ctx, parcelIDs, true).Return([]models.RoleRow{
		{PersonID: 1, ParcelID: 20, CreatedAt: created},
		{PersonID: 2, ParcelID: 20, CreatedAt: created.Add(-time.Hour)},
	}, nil)

	nom := "Kabila"
	birth := time.Date(1985, time.April, 2, 0, 0, 0, 0, time.UTC)
	mockPersons.On("HydrateByIDs", ctx, []int64{1, 2}).Return(map[int64]models.PersonRecord{
		1: {ID: 1, Nom: &nom, DateNaissance: &birth, CreatedAt: created},
		2: {ID: 2, CreatedAt: created.Add(-time.Hour)},
	}, nil)

	numero := "12B"
	mockParcels.On("AddressChains", ctx, []int64{10, 20}).Return(map[int64]models.AddressChain{
		10: {Numero: &numero},
	}, nil)

	mockPersons.On("ResponsibleFor", ctx, []int64{2}).Return(map[int64]string{
		2: "Chef Untel",
	}, nil)

	// Act
	page, err := service.List(ctx, filter, 1, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.Data, 2)

	// Person 1 owns a parcel and is also a household member; the owner role
	// wins and their address follows the owned parcel.
	first := page.Data[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Propriétaire", first.Categorie)
	require.NotNil(t, first.Adresse.Numero)
	assert.Equal(t, "12B", *first.Adresse.Numero)
	require.NotNil(t, first.DateNaissance)
	assert.Equal(t, "1985-04-02", *first.DateNaissance)
	assert.Nil(t, first.Responsable)

	// Person 2 stays a household member and carries their household head.
	second := page.Data[1]
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, "Membre menage", second.Categorie)
	require.NotNil(t, second.Responsable)
	assert.Equal(t, "Chef Untel", *second.Responsable)

	mockParcels.AssertExpectations(t)
	mockPersons.AssertExpectations(t)
}

func TestPopulationList_EmptyParcelSet(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()
	filter := models.ParcelFilter{}

	mockParcels.On("ResolveIDs", ctx, filter).Return([]int64{}, nil)

	// Act
	page, err := service.List(ctx, filter, 1, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)

	// No role queries when there is nothing to resolve against
	mockPersons.AssertNotCalled(t, "Owners")
	mockPersons.AssertNotCalled(t, "HydrateByIDs")
}

func TestPopulationList_InvalidPagination(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()

	// Act / Assert
	_, err := service.List(ctx, models.ParcelFilter{}, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = service.List(ctx, models.ParcelFilter{}, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	_, err = service.List(ctx, models.ParcelFilter{}, 1, 101)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	// Validation happens before any storage work
	mockParcels.AssertNotCalled(t, "ResolveIDs")
}

func TestPopulationList_AddressLookupDegradesToNull(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()
	filter := models.ParcelFilter{}
	parcelIDs := []int64{10}
	created := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	mockParcels.On("ResolveIDs", ctx, filter).Return(parcelIDs, nil)
	mockPersons.On("Owners", ctx, parcelIDs, true).Return([]models.RoleRow{
		{PersonID: 1, ParcelID: 10, CreatedAt: created},
	}, nil)
	mockPersons.On("HouseholdHeads", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("Tenants", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HouseholdMembers", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HydrateByIDs", ctx, []int64{1}).Return(map[int64]models.PersonRecord{
		1: {ID: 1, CreatedAt: created},
	}, nil)
	mockParcels.On("AddressChains", ctx, []int64{10}).Return(nil, errors.New("join failed"))

	// Act
	page, err := service.List(ctx, filter, 1, 10)

	// Assert: the page still comes back, with null address parts
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Nil(t, page.Data[0].Adresse.Numero)
	assert.Nil(t, page.Data[0].Adresse.Commune)
	assert.Equal(t, "Propriétaire", page.Data[0].Categorie)
}

func TestPopulationList_MissingPersonRowDegrades(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()
	filter := models.ParcelFilter{}
	parcelIDs := []int64{10}
	created := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	mockParcels.On("ResolveIDs", ctx, filter).Return(parcelIDs, nil)
	mockPersons.On("Owners", ctx, parcelIDs, true).Return([]models.RoleRow{
		{PersonID: 9, ParcelID: 10, CreatedAt: created},
	}, nil)
	mockPersons.On("HouseholdHeads", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("Tenants", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HouseholdMembers", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)

	// Hydration does not find the person; the record still appears with its
	// id and category.
	mockPersons.On("HydrateByIDs", ctx, []int64{9}).Return(map[int64]models.PersonRecord{}, nil)
	mockParcels.On("AddressChains", ctx, []int64{10}).Return(map[int64]models.AddressChain{}, nil)

	// Act
	page, err := service.List(ctx, filter, 1, 10)

	// Assert
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(9), page.Data[0].ID)
	assert.Equal(t, "Propriétaire", page.Data[0].Categorie)
	assert.Nil(t, page.Data[0].Nom)
	assert.Nil(t, page.Data[0].DateNaissance)
}

func TestPopulationList_TotalInvariantAcrossPages(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()
	filter := models.ParcelFilter{}
	parcelIDs := []int64{10}

	// 25 distinct owners
	owners := make([]models.RoleRow, 0, 25)
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		owners = append(owners, models.RoleRow{
			PersonID:  int64(i),
			ParcelID:  10,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	mockParcels.On("ResolveIDs", ctx, filter).Return(parcelIDs, nil)
	mockPersons.On("Owners", ctx, parcelIDs, true).Return(owners, nil)
	mockPersons.On("HouseholdHeads", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("Tenants", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HouseholdMembers", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HydrateByIDs", ctx, mock.Anything).Return(map[int64]models.PersonRecord{}, nil)
	mockParcels.On("AddressChains", ctx, mock.Anything).Return(map[int64]models.AddressChain{}, nil)

	// Act: the short last page
	page, err := service.List(ctx, filter, 3, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Data, 5)

	// Newest first: the last page holds the five oldest persons
	assert.Equal(t, int64(5), page.Data[0].ID)
	assert.Equal(t, int64(1), page.Data[4].ID)
}

func TestPopulationListAll_ReturnsWholeSet(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()
	filter := models.ParcelFilter{}
	parcelIDs := []int64{10}
	created := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	mockParcels.On("ResolveIDs", ctx, filter).Return(parcelIDs, nil)
	mockPersons.On("Owners", ctx, parcelIDs, true).Return([]models.RoleRow{
		{PersonID: 1, ParcelID: 10, CreatedAt: created},
		{PersonID: 2, ParcelID: 10, CreatedAt: created.Add(time.Minute)},
	}, nil)
	mockPersons.On("HouseholdHeads", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("Tenants", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HouseholdMembers", ctx, parcelIDs, true).Return([]models.RoleRow{}, nil)
	mockPersons.On("HydrateByIDs", ctx, []int64{2, 1}).Return(map[int64]models.PersonRecord{}, nil)
	mockParcels.On("AddressChains", ctx, []int64{10, 10}).Return(map[int64]models.AddressChain{}, nil)

	// Act
	records, err := service.ListAll(ctx, filter)

	// Assert
	require.NoError(t, err)
	assert.Len(t, records, 2)
	mockParcels.AssertExpectations(t)
	mockPersons.AssertExpectations(t)
}

func TestPopulationList_ResolveError(t *testing.T) {
	// Arrange
	mockParcels := new(MockParcelRepository)
	mockPersons := new(MockPersonRepository)
	log := logger.New("test")
	service := NewPopulationService(mockParcels, mockPersons, log)

	ctx := context.Background()
	dbError := errors.New("database connection failed")
	mockParcels.On("ResolveIDs", ctx, mock.Anything).Return(nil, dbError)

	// Act
	page, err := service.List(ctx, models.ParcelFilter{}, 1, 10)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, dbError)
}
