package lifecycle

import (
	"fmt"
	"time"

	"storefront-orders/internal/features/orders/domain"
)

// Stage is one simulated shipping step. After is measured from the previous
// stage (or from order creation for the first one).
type Stage struct {
	Status   domain.OrderStatus
	After    time.Duration
	Location string
	Details  string
}

// DefaultStages returns the standard progression: shipped after 4 minutes,
// in transit 5 minutes later and delivered 5 minutes after that.
func DefaultStages() []Stage {
	return StagesFromDelays(4*time.Minute, 5*time.Minute, 5*time.Minute)
}

// StagesFromDelays builds the standard progression with custom delays.
func StagesFromDelays(shipped, inTransit, delivered time.Duration) []Stage {
	return []Stage{
		{
			Status:   domain.OrderStatusShipped,
			After:    shipped,
			Location: "Warehouse",
			Details:  "Your order has been shipped and is on its way",
		},
		{
			Status:   domain.OrderStatusInTransit,
			After:    inTransit,
			Location: "Local Distribution Center",
			Details:  "Your order is in transit to the delivery location",
		},
		{
			Status:   domain.OrderStatusDelivered,
			After:    delivered,
			Location: "Your Location",
			Details:  "Your order has been delivered",
		},
	}
}

// CancelPolicy decides what happens to pending stages when an order is cancelled.
type CancelPolicy string

const (
	// CancelPolicyRevoke drops pending stages so a cancelled order stays cancelled.
	CancelPolicyRevoke CancelPolicy = "revoke"
	// CancelPolicyLastWriteWins keeps pending stages armed; a later stage
	// overwrites the cancellation.
	CancelPolicyLastWriteWins CancelPolicy = "last_write_wins"
)

// ParseCancelPolicy converts a raw config value into a CancelPolicy.
// An empty value selects CancelPolicyRevoke.
func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch p := CancelPolicy(s); p {
	case "":
		return CancelPolicyRevoke, nil
	case CancelPolicyRevoke, CancelPolicyLastWriteWins:
		return p, nil
	}
	return "", fmt.Errorf("unknown cancel policy %q", s)
}

// resumeIndex returns the first stage still ahead of the order, or -1 when
// the order is terminal. Statuses outside the progression (Processing,
// Pending Payment) fall back to the last stage found in the tracking history.
func resumeIndex(stages []Stage, order domain.Order) int {
	if order.Status.IsTerminal() {
		return -1
	}
	if i := stageIndex(stages, order.Status); i >= 0 {
		return i + 1
	}
	for i := len(order.TrackingUpdates) - 1; i >= 0; i-- {
		if j := stageIndex(stages, order.TrackingUpdates[i].Status); j >= 0 {
			return j + 1
		}
	}
	return 0
}

func stageIndex(stages []Stage, status domain.OrderStatus) int {
	for i, st := range stages {
		if st.Status == status {
			return i
		}
	}
	return -1
}
