package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealshare/mealshare-be/internal/models"
)

// Columns that are always server-derived and never taken from caller
// input, regardless of what the allowlist contains.
var reservedColumns = map[string]struct{}{
	"user_id":    {},
	"email":      {},
	"role":       {},
	"created_at": {},
	"updated_at": {},
}

// buildPayload produces the single write payload for an upsert.
//
// With an existing row, the row's own key set is the allowlist: caller
// fields outside it are silently dropped, and role, email, and
// updated_at are always overwritten with the authoritative values.
// Without a row, the payload collapses to the minimal fixed field set
// and no caller fields are accepted. Either way the payload's key set is
// a subset of the allowlist plus {role, updated_at}, and its role always
// equals the authoritative persisted role.
func buildPayload(existing, submitted map[string]any, role models.PersistedRole, userID uuid.UUID, email string, now time.Time) map[string]any {
	if existing == nil {
		return map[string]any{
			"user_id":    userID,
			"email":      email,
			"role":       string(role),
			"created_at": now,
			"updated_at": now,
		}
	}

	payload := map[string]any{
		"user_id":    userID,
		"email":      email,
		"role":       string(role),
		"updated_at": now,
	}
	for col := range existing {
		if _, reserved := reservedColumns[col]; reserved {
			continue
		}
		if value, ok := submitted[col]; ok {
			payload[col] = value
		}
	}
	return payload
}
