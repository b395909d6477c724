package trade

import (
	"strconv"
	"time"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

const (
	fieldParticipantA = "participant_a"
	fieldParticipantB = "participant_b"
	fieldItemA        = "item_a"
	fieldItemB        = "item_b"
	fieldCompletedAt  = "completed_at"
)

func tradeToFields(t domain.Trade) map[string]string {
	return map[string]string{
		fieldParticipantA: t.Participants[0],
		fieldParticipantB: t.Participants[1],
		fieldItemA:        t.Items[0],
		fieldItemB:        t.Items[1],
		fieldCompletedAt:  strconv.FormatInt(t.CompletedAt.UnixMilli(), 10),
	}
}

func tradeFromFields(id string, fields map[string]string) domain.Trade {
	var completedAt time.Time
	if ms, err := strconv.ParseInt(fields[fieldCompletedAt], 10, 64); err == nil {
		completedAt = time.UnixMilli(ms).UTC()
	}

	return domain.Trade{
		ID:           id,
		Participants: [2]string{fields[fieldParticipantA], fields[fieldParticipantB]},
		Items:        [2]string{fields[fieldItemA], fields[fieldItemB]},
		CompletedAt:  completedAt,
	}
}
