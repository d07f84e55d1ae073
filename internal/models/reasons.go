package models

// ReasonMap maps an entity key ("stock:<code>" or "sector:<name>") to a short
// human-readable move explanation. Values are capped at 30 runes and at most
// two "; "-joined clauses. Writers follow first-match-wins: an existing key is
// never overwritten.
type ReasonMap map[string]string

// StockKey returns the reason map key for a stock code
func StockKey(code string) string {
	return "stock:" + code
}

// SectorKey returns the reason map key for a sector name
func SectorKey(name string) string {
	return "sector:" + name
}

// LimitEvent is one entry of the same-day limit-up pool
type LimitEvent struct {
	Industry string
	Boards   int // consecutive sessions closed at the cap
}

// Classification is the industry/concept resolution for one stock code
type Classification struct {
	Industry string
	Keywords []string
}
