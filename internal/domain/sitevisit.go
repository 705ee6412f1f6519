package domain

import "strings"

// Location is the structured address a technician records on site. The
// backend keeps the fields flat on the site-visit record, so Location is
// embedded rather than nested in JSON.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	HouseNo   string  `json:"houseNo"`
	Area      string  `json:"area"`
	Street    string  `json:"street"`
	Landmark  string  `json:"landmark"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Pincode   string  `json:"pincode"`
}

// CableConnection documents one physical wiring change made on site. It is
// always owned by exactly one SiteVisit and never independently addressable.
type CableConnection struct {
	CoreNumber int    `json:"coreNumber"`
	FromColor  string `json:"fromColor"`
	ToColor    string `json:"toColor"`
	Reason     string `json:"reason"`
}

// Photo is one piece of photographic evidence attached to a SiteVisit after
// creation. PhotoURL is a path relative to the backend origin.
type Photo struct {
	PhotoURL   string `json:"photoUrl"`
	PhotoName  string `json:"photoName"`
	UploadedAt string `json:"uploadedAt"`
}

// ResolveURL prefixes the backend origin onto the relative photo path so the
// photo can actually be fetched or displayed.
func (p Photo) ResolveURL(base string) string {
	if p.PhotoURL == "" {
		return ""
	}
	if strings.HasPrefix(p.PhotoURL, "http://") || strings.HasPrefix(p.PhotoURL, "https://") {
		return p.PhotoURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p.PhotoURL, "/")
}

// SiteVisit is a technician-authored record of a site inspection. It has a
// two-phase lifecycle: created with location and cable data, then optionally
// grown with photos via a separate upload step.
type SiteVisit struct {
	ID int32 `json:"id"`
	Location
	CableConnections []CableConnection `json:"cableConnections,omitempty"`
	Photos           []Photo           `json:"photos,omitempty"`
	CreatedAt        string            `json:"createdAt,omitempty"`
}

// HasPhotos reports whether the evidence-upload phase has happened. It is
// derived from fetched server state, so it stays correct across restarts.
func (v *SiteVisit) HasPhotos() bool {
	return len(v.Photos) > 0
}
