// Package domain contains the core domain types for the watch catalog context.
package domain

// Platform identifies a marketplace a listing was observed on.
type Platform string

const (
	PlatformEBay     Platform = "ebay"
	PlatformChrono24 Platform = "chrono24"

	// PlatformPrivate has no marketplace client; it exists as a fee-table
	// key for private sales.
	PlatformPrivate Platform = "private"
)

// String returns the platform identifier.
func (p Platform) String() string {
	return string(p)
}
