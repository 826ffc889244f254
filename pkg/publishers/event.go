package publishers

import (
	"time"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

// Event is the payload published for every matched listing.
type Event struct {
	SourceID     string         `json:"source_id"`
	SourceName   string         `json:"source_name"`
	Listing      domain.Listing `json:"listing"`
	MatchedRoles []string       `json:"matched_roles"`
	ClassifiedAt time.Time      `json:"classified_at"`
}

// NewEvent constructs an Event for a matched listing.
func NewEvent(sourceID, sourceName string, listing domain.Listing) Event {
	return Event{
		SourceID:     sourceID,
		SourceName:   sourceName,
		Listing:      listing,
		MatchedRoles: listing.MatchedRoles,
		ClassifiedAt: time.Now().UTC(),
	}
}
