package domain

import "time"

// Record provides the fields every stored document entry carries.
// It is inlined into the JSON object of the embedding type.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// GetID returns the record identifier used for merge reconciliation.
func (r Record) GetID() string {
	return r.ID
}

// InitTimestamps stamps CreatedAt with the current UTC time.
func (r *Record) InitTimestamps() {
	r.CreatedAt = time.Now().UTC()
}
