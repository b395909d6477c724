package offer

import (
	"strconv"
	"time"

	"github.com/swapmeet-io/swapmeet/internal/domain"
)

const (
	fieldUserID    = "user_id"
	fieldUserName  = "user_name"
	fieldProduct   = "product"
	fieldCategory  = "category"
	fieldDistance  = "distance"
	fieldDetails   = "details"
	fieldCreatedAt = "created_at"
)

func offerToFields(o domain.Offer) map[string]string {
	return map[string]string{
		fieldUserID:    o.UserID,
		fieldUserName:  o.UserName,
		fieldProduct:   o.Product,
		fieldCategory:  o.Category,
		fieldDistance:  strconv.Itoa(o.Distance),
		fieldDetails:   o.Details,
		fieldCreatedAt: strconv.FormatInt(o.CreatedAt.UnixMilli(), 10),
	}
}

func offerFromFields(id string, fields map[string]string) domain.Offer {
	// Malformed numerics coerce to zero rather than failing the read.
	distance, _ := strconv.Atoi(fields[fieldDistance])
	if distance < 0 {
		distance = 0
	}

	var createdAt time.Time
	if ms, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64); err == nil {
		createdAt = time.UnixMilli(ms).UTC()
	}

	return domain.Offer{
		ID:        id,
		UserID:    fields[fieldUserID],
		UserName:  fields[fieldUserName],
		Product:   fields[fieldProduct],
		Category:  fields[fieldCategory],
		Distance:  distance,
		Details:   fields[fieldDetails],
		CreatedAt: createdAt,
	}
}
