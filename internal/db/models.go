// Package db defines persistence models for the inventario store.
package db

// Role values stored on inventory and session rows.
const (
	RoleAdmin = "Admin"
	RoleGuest = "Guest"
)

// InventoryCount is one row per guest tally or admin reference-weight
// entry. Weight and exact samples use 0 as the "absent" sentinel; the
// report layer ignores non-positive values.
type InventoryCount struct {
	ID        int64
	Role      string
	Username  string
	Grade     string
	Diameter  float64
	Supplier  string
	RollCount int64
	Weights   [5]float64
	Exacts    [3]float64
	CreatedAt int64
	UpdatedAt int64
}

// MachineRecord is one guest-submitted production weight reading for a
// specific machine. Append-only.
type MachineRecord struct {
	ID        int64
	Username  string
	Machine   string
	Grade     string
	Diameter  float64
	Weights   [5]float64
	CreatedAt int64
}

// Session represents a logged-in client. The cookie carries only the
// token; role and username live here.
type Session struct {
	Token     string
	Role      string
	Username  string
	CreatedAt int64
	ExpiresAt int64
}

// MaterialOptions holds the distinct grades and diameters the admin has
// registered, used to populate guest form dropdowns.
type MaterialOptions struct {
	Grades    []string
	Diameters []float64
}
