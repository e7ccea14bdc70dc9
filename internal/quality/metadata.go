package quality

import "time"

// DateRange is the observed activity window of one category file.
// Either bound may be absent when no row carried a parseable date.
type DateRange struct {
	Earliest *time.Time `json:"earliest"`
	Latest   *time.Time `json:"latest"`
}

// Days returns the span of the range in whole days, 0 when either
// bound is absent.
func (d DateRange) Days() int {
	if d.Earliest == nil || d.Latest == nil {
		return 0
	}
	return int(d.Latest.Sub(*d.Earliest).Hours() / 24)
}

func (d DateRange) observe(t time.Time) DateRange {
	out := d
	if out.Earliest == nil || t.Before(*out.Earliest) {
		tt := t
		out.Earliest = &tt
	}
	if out.Latest == nil || t.After(*out.Latest) {
		tt := t
		out.Latest = &tt
	}
	return out
}

// Metadata holds the structural aggregates of one category file. Only
// the fields relevant to the category are populated; the rest stay
// zero.
type Metadata struct {
	Category Category `json:"category"`

	// NumRecords counts rows: cart items, orders, purchases,
	// billings or viewing sessions depending on the category.
	NumRecords        int     `json:"num_records"`
	TotalQuantity     int     `json:"total_quantity,omitempty"`
	TotalAmount       float64 `json:"total_amount,omitempty"`
	TotalHours        float64 `json:"total_hours,omitempty"`
	UniqueProducts    int     `json:"unique_products,omitempty"`
	UniqueOrders      int     `json:"unique_orders,omitempty"`
	AvgOrderValue     float64 `json:"avg_order_value,omitempty"`
	AvgItemsPerOrder  float64 `json:"avg_items_per_order,omitempty"`
	TotalShipping     float64 `json:"total_shipping,omitempty"`
	TotalDiscounts    float64 `json:"total_discounts,omitempty"`
	MostExpensiveItem float64 `json:"most_expensive_item,omitempty"`
	GiftOrdersPct     float64 `json:"gift_orders_percentage,omitempty"`

	DateRange DateRange `json:"date_range"`

	// Breakdowns maps a categorical field to its value counts, e.g.
	// "order_statuses" -> {"Closed": 12, "Cancelled": 1}.
	Breakdowns map[string]map[string]int `json:"breakdowns,omitempty"`
}

// Breakdown returns the count map for a categorical field, never nil.
func (m *Metadata) Breakdown(name string) map[string]int {
	if m.Breakdowns == nil {
		return map[string]int{}
	}
	if b, ok := m.Breakdowns[name]; ok {
		return b
	}
	return map[string]int{}
}

func (m *Metadata) countInto(breakdown, value string) {
	if value == "" {
		return
	}
	if m.Breakdowns == nil {
		m.Breakdowns = make(map[string]map[string]int)
	}
	if m.Breakdowns[breakdown] == nil {
		m.Breakdowns[breakdown] = make(map[string]int)
	}
	m.Breakdowns[breakdown][value]++
}
