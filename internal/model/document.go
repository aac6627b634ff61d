package model

import "time"

// Document represents a stored file and its access grants.
// This is a pure domain model with no database-specific dependencies beyond
// serialization tags. It can be used across layers (HTTP, service, storage)
// without coupling to persistence.
//
// ID, OwnerID, URL, Filename and UploadedAt are immutable after creation;
// only the owner may mutate SharedWith.
type Document struct {
	ID         string    `json:"id" bson:"id"`
	Filename   string    `json:"filename" bson:"fileName"`
	URL        string    `json:"url" bson:"url"`
	OwnerID    string    `json:"ownerid" bson:"ownerId"`
	SharedWith []string  `json:"sharedwith" bson:"sharedWith"`
	UploadedAt time.Time `json:"uploadedat" bson:"uploadedAt"`
}

// SharedWithContains reports whether the grantee set contains the identity.
func (d *Document) SharedWithContains(identity string) bool {
	for _, g := range d.SharedWith {
		if g == identity {
			return true
		}
	}
	return false
}
