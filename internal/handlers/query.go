package handlers

import (
	"time"

	"github.com/fonciercd/cadastre-api/internal/models"
)

// ListQuery is the common query-parameter shape of the filtered list and
// aggregation endpoints. All filters are optional; pagination defaults to the
// first page of ten records. Out-of-range values are rejected by binding
// validation, never silently corrected.
type ListQuery struct {
	Commune   *int64 `form:"commune" binding:"omitempty,min=1"`
	Quartier  *int64 `form:"quartier" binding:"omitempty,min=1"`
	Avenue    *int64 `form:"avenue" binding:"omitempty,min=1"`
	Rang      *int64 `form:"rang" binding:"omitempty,min=1"`
	Province  *int64 `form:"province" binding:"omitempty,min=1"`
	Ville     *int64 `form:"ville" binding:"omitempty,min=1"`
	DateStart string `form:"date_start" binding:"omitempty,datetime=2006-01-02"`
	DateEnd   string `form:"date_end" binding:"omitempty,datetime=2006-01-02"`
	Keyword   string `form:"keyword"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"page_size,default=10" binding:"min=1,max=100"`
}

// Filter converts the bound query into a parcel filter. Dates have already
// passed binding validation.
func (q *ListQuery) Filter() models.ParcelFilter {
	f := models.ParcelFilter{
		CommuneID:  q.Commune,
		QuartierID: q.Quartier,
		AvenueID:   q.Avenue,
		RangID:     q.Rang,
		ProvinceID: q.Province,
		VilleID:    q.Ville,
		Keyword:    q.Keyword,
	}
	if q.DateStart != "" {
		if d, err := time.Parse(time.DateOnly, q.DateStart); err == nil {
			f.DateStart = &d
		}
	}
	if q.DateEnd != "" {
		if d, err := time.Parse(time.DateOnly, q.DateEnd); err == nil {
			f.DateEnd = &d
		}
	}
	return f
}

// BuildingListQuery adds the building-specific nature filter.
type BuildingListQuery struct {
	ListQuery
	Nature *int64 `form:"nature" binding:"omitempty,min=1"`
}

// BuildingFilter converts the bound query into a building filter.
func (q *BuildingListQuery) BuildingFilter() models.BuildingFilter {
	return models.BuildingFilter{
		ParcelFilter: q.Filter(),
		NatureID:     q.Nature,
	}
}
