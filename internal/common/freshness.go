package common

import "time"

// Freshness TTLs for fetched data
const (
	FreshnessHoldingsInfo = 7 * 24 * time.Hour // company country/website rarely change
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
