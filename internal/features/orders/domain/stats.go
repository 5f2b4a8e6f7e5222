package domain

// Stats summarises the order collection.
type Stats struct {
	// Orders is the number of orders in the collection.
	Orders int `json:"orders"`
	// ByStatus counts orders per current status.
	ByStatus map[OrderStatus]int `json:"byStatus"`
	// Revenue sums the totals of orders that were not cancelled.
	Revenue float64 `json:"revenue"`
}

// ComputeStats aggregates the given orders.
func ComputeStats(orders []Order) Stats {
	stats := Stats{
		Orders:   len(orders),
		ByStatus: make(map[OrderStatus]int, len(knownStatuses)),
	}
	for _, status := range AllStatuses() {
		stats.ByStatus[status] = 0
	}
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		if o.Status != OrderStatusCancelled {
			stats.Revenue += o.Total
		}
	}
	stats.Revenue = roundCents(stats.Revenue)
	return stats
}
