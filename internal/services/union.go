package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/fonciercd/cadastre-api/internal/models"
	"github.com/fonciercd/cadastre-api/internal/repository"
)

// Role is a relationship role connecting a person to the parcel set. Higher
// values win when a person qualifies under several roles at once.
type Role int

const (
	RoleUnknown Role = iota
	RoleMember
	RoleTenant
	RoleHead
	RoleOwner
)

// Label returns the reported category for a role.
func (r Role) Label() string {
	switch r {
	case RoleOwner:
		return "Propriétaire"
	case RoleHead:
		return "Chef de ménage"
	case RoleTenant:
		return "Locataire"
	case RoleMember:
		return "Membre menage"
	default:
		return "Inconnu"
	}
}

// resolvePersonMemberships computes the deduplicated union of the four
// relationship roles over the given parcel set. An empty parcel set
// short-circuits without touching storage. The result is ordered by person
// creation time descending, ties broken by person id descending, so
// pagination over it is stable.
func resolvePersonMemberships(ctx context.Context, persons repository.PersonRepository, parcelIDs []int64, individualsOnly bool) ([]personMembership, error) {
	if len(parcelIDs) == 0 {
		return []personMembership{}, nil
	}

	owners, err := persons.Owners(ctx, parcelIDs, individualsOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owners: %w", err)
	}
	heads, err := persons.HouseholdHeads(ctx, parcelIDs, individualsOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve household heads: %w", err)
	}
	tenants, err := persons.Tenants(ctx, parcelIDs, individualsOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenants: %w", err)
	}
	members, err := persons.HouseholdMembers(ctx, parcelIDs, individualsOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve household members: %w", err)
	}

	return mergeRoleRows(owners, heads, tenants, members), nil
}

// personMembership is one entry of the resolved union. The parcel linkage is
// the one carried by the winning role's row, so address resolution and
// geographic grouping stay consistent with the reported category.
type personMembership struct {
	PersonID  int64
	ParcelID  int64
	Role      Role
	CreatedAt int64 // unix nanoseconds of the person's creation time
}

// mergeRoleRows builds the precedence-aware union: one pass per role set,
// keeping for each person the first row of the highest-precedence role seen.
// A person is never reported twice or under two categories.
func mergeRoleRows(owners, heads, tenants, members []models.RoleRow) []personMembership {
	byPerson := map[int64]personMembership{}

	absorb := func(role Role, rows []models.RoleRow) {
		for _, row := range rows {
			existing, seen := byPerson[row.PersonID]
			if seen && existing.Role >= role {
				continue
			}
			byPerson[row.PersonID] = personMembership{
				PersonID:  row.PersonID,
				ParcelID:  row.ParcelID,
				Role:      role,
				CreatedAt: row.CreatedAt.UnixNano(),
			}
		}
	}

	absorb(RoleOwner, owners)
	absorb(RoleHead, heads)
	absorb(RoleTenant, tenants)
	absorb(RoleMember, members)

	merged := make([]personMembership, 0, len(byPerson))
	for _, m := range byPerson {
		merged = append(merged, m)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CreatedAt != merged[j].CreatedAt {
			return merged[i].CreatedAt > merged[j].CreatedAt
		}
		return merged[i].PersonID > merged[j].PersonID
	})

	return merged
}
