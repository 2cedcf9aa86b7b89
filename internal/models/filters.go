package models

import "time"

// ParcelFilter holds the optional, independently combinable criteria used to
// narrow the parcel set. All filters are ANDed together; a nil field means
// "no restriction on this axis". Date bounds apply to the date component of
// the parcel's creation timestamp, both inclusive.
type ParcelFilter struct {
	ProvinceID *int64
	VilleID    *int64
	CommuneID  *int64
	QuartierID *int64
	AvenueID   *int64
	RangID     *int64
	DateStart  *time.Time
	DateEnd    *time.Time
	// Keyword is matched case-insensitively as a substring against the
	// owner's name parts and alias.
	Keyword string
}

// IsZero reports whether no filter criteria are set.
func (f ParcelFilter) IsZero() bool {
	return f.ProvinceID == nil && f.VilleID == nil && f.CommuneID == nil &&
		f.QuartierID == nil && f.AvenueID == nil && f.RangID == nil &&
		f.DateStart == nil && f.DateEnd == nil && f.Keyword == ""
}

// BuildingFilter narrows the building set. Geographic criteria apply through
// the building's parcel.
type BuildingFilter struct {
	ParcelFilter
	NatureID *int64
}
