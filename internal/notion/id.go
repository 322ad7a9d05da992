package notion

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeID canonicalizes a record ID to dashed UUID form. The remote API
// returns both dashed and undashed forms depending on endpoint; cache keys
// and cross-locale references must agree on one. Non-UUID input is returned
// trimmed, unchanged.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}
