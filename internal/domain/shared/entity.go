package shared

import "time"

// Timestamps holds the creation and last-write times of a record.
// Both are owned by the store that persists the record.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTimestamps returns timestamps with created_at == updated_at == now.
func NewTimestamps(now time.Time) Timestamps {
	now = now.UTC()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Touch refreshes UpdatedAt.
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = now.UTC()
}
