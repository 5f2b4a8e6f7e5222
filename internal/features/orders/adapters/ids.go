package adapters

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces order ids and tracking numbers.
type IDGenerator interface {
	// OrderID returns an id of the form ORD-XXXXXXXXX.
	OrderID() string
	// TrackingNumber returns a number of the form 1Z followed by 16 digits.
	TrackingNumber() string
}

// RandomIDGenerator derives identifiers from random UUIDs.
type RandomIDGenerator struct{}

// OrderID implements IDGenerator.
func (RandomIDGenerator) OrderID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:9])
}

// TrackingNumber implements IDGenerator.
func (RandomIDGenerator) TrackingNumber() string {
	u := uuid.New()

	var b strings.Builder
	b.Grow(18)
	b.WriteString("1Z")
	for _, octet := range u {
		b.WriteByte('0' + octet%10)
	}
	return b.String()
}
