package model

// TableInventory is the single `restaurant_tables` row owned by a
// restaurant.  Available is only ever changed by the booking ledger and
// always stays within [0, Total].
type TableInventory struct {
	ID           uint64 `db:"id" json:"id"`
	RestaurantID uint64 `db:"restaurant_id" json:"restaurant_id"`
	Total        int    `db:"total" json:"total"`
	Available    int    `db:"available" json:"available"`
}

// Booked returns how many tables are currently held by active bookings.
func (t TableInventory) Booked() int { return t.Total - t.Available }
