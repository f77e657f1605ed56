package client

import (
	"time"

	"github.com/google/uuid"
)

// DefaultActivityLimit is the size of the recent-activity feed.
const DefaultActivityLimit = 10

// ActivityEntry is one line of the recent-activity feed. Entries outlive the
// client they mention.
type ActivityEntry struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	CompanyName string    `json:"company_name"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewActivityEntry builds an entry with a fresh id.
func NewActivityEntry(clientID, companyName, action, description string, now time.Time) ActivityEntry {
	return ActivityEntry{
		ID:          uuid.New().String(),
		ClientID:    clientID,
		CompanyName: companyName,
		Action:      action,
		Description: description,
		CreatedAt:   now.UTC(),
	}
}
