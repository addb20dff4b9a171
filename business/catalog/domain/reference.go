// Package domain contains the core domain types for the watch catalog context.
package domain

// Brand is a watch manufacturer.
type Brand struct {
	ID   int64
	Name string
	Slug string
}

// WatchReference is a specific catalog model, identified by its reference
// number. Catalog rows are owned by the seed process and read-only to the
// rest of the system.
type WatchReference struct {
	ID              int64
	BrandID         int64
	BrandName       string
	ReferenceNumber string
	ModelName       string
	Collection      string
	CaseSizeMM      int
	Movement        string
	ImageURL        string
}

// SearchQuery builds the marketplace search string for this reference.
func (r *WatchReference) SearchQuery() string {
	if r.BrandName == "" {
		return r.ReferenceNumber
	}
	return r.BrandName + " " + r.ReferenceNumber
}
