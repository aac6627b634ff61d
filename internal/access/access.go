// Package access holds the visibility predicate for document records.
package access

import "docshare/internal/model"

// Visible returns the records the identity may see: those it owns and those
// granting it access. Pure function, no side effects; input order is
// preserved, so the result is stable for a fixed input. An empty identity
// sees nothing.
func Visible(records []model.Document, identity string) []model.Document {
	out := make([]model.Document, 0, len(records))
	if identity == "" {
		return out
	}
	for _, r := range records {
		if r.OwnerID == identity || r.SharedWithContains(identity) {
			out = append(out, r)
		}
	}
	return out
}
