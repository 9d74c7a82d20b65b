package models

// ShortRole is the user-facing role vocabulary used by clients.
type ShortRole string

// PersistedRole is the storage-facing role vocabulary written to the
// profiles table. It has only three values: both RoleRecipient and
// RoleVolunteer persist as PersistedIndividual, and volunteer-ness is
// carried by a separate metadata flag instead of a fourth role.
type PersistedRole string

const (
	RoleProvider  ShortRole = "prov"
	RoleRecipient ShortRole = "recip"
	RoleVolunteer ShortRole = "vol"
	RoleOrg       ShortRole = "org"

	PersistedProvider   PersistedRole = "provider"
	PersistedIndividual PersistedRole = "individual"
	PersistedNGO        PersistedRole = "ngo"
)

var shortToPersisted = map[ShortRole]PersistedRole{
	RoleProvider:  PersistedProvider,
	RoleRecipient: PersistedIndividual,
	RoleVolunteer: PersistedIndividual,
	RoleOrg:       PersistedNGO,
}

var persistedToShort = map[PersistedRole]ShortRole{
	PersistedProvider:   RoleProvider,
	PersistedIndividual: RoleRecipient,
	PersistedNGO:        RoleOrg,
}

// ToPersistedRole translates a short role to its persisted form. Unknown
// values pass through unchanged with ok=false so callers can detect an
// unmapped role; an unknown role is never an error.
func ToPersistedRole(short ShortRole) (PersistedRole, bool) {
	if persisted, ok := shortToPersisted[short]; ok {
		return persisted, true
	}
	return PersistedRole(short), false
}

// ToDisplayRole translates a persisted role back to the short vocabulary.
// A true volunteer flag forces RoleVolunteer regardless of the persisted
// role; otherwise the inverse map applies, so PersistedIndividual with
// the flag unset always displays as RoleRecipient. Unknown values pass
// through unchanged with ok=false.
func ToDisplayRole(persisted PersistedRole, volunteer bool) (ShortRole, bool) {
	if volunteer {
		return RoleVolunteer, true
	}
	if short, ok := persistedToShort[persisted]; ok {
		return short, true
	}
	return ShortRole(persisted), false
}
