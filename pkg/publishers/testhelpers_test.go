package publishers

import (
	"encoding/json"
	"time"

	"github.com/samvad-hq/discogs-harvester/internal/domain"
)

func testEvent() Event {
	return NewEvent(domain.Record{
		ID:          "3f786850e387550fdab836ed7e6dc881de23001b",
		JobID:       "afx",
		Kind:        "artist",
		Target:      "45",
		Key:         "artist:45",
		ContentType: "application/json",
		Payload:     json.RawMessage(`{"id":45,"name":"Aphex Twin"}`),
		RateLimit:   domain.RateLimit{Limit: "60", Remaining: "58"},
		FetchedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
}
