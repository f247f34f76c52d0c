package stats

import (
	"time"

	"github.com/google/uuid"

	"threatsnap/pkg/models"
)

// Summary holds the frequency tables of one snapshot.
type Summary struct {
	ID                string
	GeneratedAt       time.Time
	Total             int
	BySourceAddress   *Counter[string]
	ByDestinationPort *Counter[int]
	BySignature       *Counter[string]
}

// Summarize builds the three frequency tables in one pass.
func Summarize(alerts []models.Alert) *Summary {
	s := &Summary{
		ID:                uuid.NewString(),
		GeneratedAt:       time.Now().UTC(),
		BySourceAddress:   NewCounter[string](),
		ByDestinationPort: NewCounter[int](),
		BySignature:       NewCounter[string](),
	}
	for _, alert := range alerts {
		s.Total++
		s.BySourceAddress.Add(alert.SrcIP)
		s.ByDestinationPort.Add(alert.DestPort)
		s.BySignature.Add(alert.Signature)
	}
	return s
}

// Empty reports whether no alerts were summarized.
func (s *Summary) Empty() bool {
	return s == nil || s.Total == 0
}
