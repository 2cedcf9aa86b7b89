package models

import (
	"time"

	"github.com/twpayne/go-geom"
)

// Person type classification stored in personnes.type_personne.
const (
	PersonTypeIndividual   = 1
	PersonTypeOrganization = 2
)

// Parcel accessibility statuses stored in parcelles.statut.
const (
	ParcelStatusAccessible   = 1
	ParcelStatusInaccessible = 2
)

// AddressChain is the resolved address hierarchy for a parcel or building.
// All parts are nullable: a missing link in the chain degrades to nil rather
// than failing the record.
type AddressChain struct {
	Numero   *string `json:"numero"`
	Avenue   *string `json:"avenue"`
	Quartier *string `json:"quartier"`
	Commune  *string `json:"commune"`
}

// ParcelRecord is the denormalized parcel shape returned by list and detail
// endpoints. Nullable columns use pointers so absent values serialize as null.
type ParcelRecord struct {
	ID                 int64        `json:"id"`
	Adresse            AddressChain `json:"adresse"`
	Proprietaire       *string      `json:"proprietaire"`
	Rang               *string      `json:"rang"`
	Statut             *int16       `json:"statut"`
	Superficie         *float64     `json:"superficie"`
	SuperficieCorrigee *float64     `json:"superficie_corrigee"`
	NombreBatiments    int          `json:"nombre_batiments"`
	CreatedAt          time.Time    `json:"created_at"`
}

// BuildingRecord is the denormalized building shape for list and detail
// endpoints.
type BuildingRecord struct {
	ID                 int64        `json:"id"`
	ParcelleID         int64        `json:"parcelle_id"`
	Nature             *string      `json:"nature"`
	Usage              *string      `json:"usage"`
	UsageSpecifique    *string      `json:"usage_specifique"`
	Occupant           *string      `json:"occupant"`
	Adresse            AddressChain `json:"adresse"`
	Superficie         *float64     `json:"superficie"`
	SuperficieCorrigee *float64     `json:"superficie_corrigee"`
	CreatedAt          time.Time    `json:"created_at"`
}

// PersonRecord is the raw person row hydrated for a page of person ids,
// before the relationship category and address chain are attached.
type PersonRecord struct {
	ID            int64
	Nom           *string
	Postnom       *string
	Prenom        *string
	Alias         *string
	Sexe          *string
	DateNaissance *time.Time
	Profession    *string
	EtatCivil     *string
	Telephone     *string
	Email         *string
	Nationalite   *string
	TypePersonne  int16
	CreatedAt     time.Time
}

// PopulationRecord is the full denormalized person shape for population
// endpoints: demographics plus relationship category, address chain and,
// for household members, the household head's name.
type PopulationRecord struct {
	ID            int64        `json:"id"`
	Nom           *string      `json:"nom"`
	Postnom       *string      `json:"postnom"`
	Prenom        *string      `json:"prenom"`
	Alias         *string      `json:"alias"`
	Sexe          *string      `json:"sexe"`
	DateNaissance *string      `json:"date_naissance"`
	Profession    *string      `json:"profession"`
	EtatCivil     *string      `json:"etat_civil"`
	Telephone     *string      `json:"telephone"`
	Email         *string      `json:"email"`
	Nationalite   *string      `json:"nationalite"`
	Categorie     string       `json:"categorie"`
	Responsable   *string      `json:"responsable"`
	Adresse       AddressChain `json:"adresse"`
	CreatedAt     time.Time    `json:"created_at"`
}

// RoleRow links a person to one parcel of the filtered set through a single
// relationship role query. The same person may appear in rows from several
// role queries; deduplication happens in the union resolver.
type RoleRow struct {
	PersonID  int64
	ParcelID  int64
	CreatedAt time.Time
}

// Reference is a generic id+label row from one of the reference tables
// (rangs, natures, usages, ...). Every reference value becomes an aggregation
// bucket, zero-filled when unmatched.
type Reference struct {
	ID  int64  `json:"id"`
	Nom string `json:"nom"`
}

// GeoLabel names a geographic unit together with its parent, used to format
// disambiguated bucket labels such as "Quartier X (Commune Y)".
type GeoLabel struct {
	Name   string
	Parent string
}

// Demographic carries the fields needed for age-pyramid binning.
type Demographic struct {
	PersonID      int64
	Sexe          *string
	DateNaissance *time.Time
}

// AgeBucket is one bar of the age pyramid.
type AgeBucket struct {
	Tranche   string  `json:"tranche"`
	Hommes    int     `json:"hommes"`
	HommesPct float64 `json:"hommes_pct"`
	Femmes    int     `json:"femmes"`
	FemmesPct float64 `json:"femmes_pct"`
	Total     int     `json:"total"`
}

// ParcelFeature couples a parcel's identity and display properties with its
// decoded geometry for GeoJSON export.
type ParcelFeature struct {
	ID         int64
	Geometry   geom.T
	Properties map[string]interface{}
}
