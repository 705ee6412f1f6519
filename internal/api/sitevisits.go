package api

import (
	"context"
	"fmt"
	"strconv"

	"compass-field-client/internal/domain"
	"compass-field-client/internal/gateway"
)

// SiteVisitAPI covers the site-visit lifecycle: technician creation and
// photo upload, plus the company and admin review reads.
type SiteVisitAPI struct {
	gw *gateway.Gateway
}

func NewSiteVisitAPI(gw *gateway.Gateway) *SiteVisitAPI {
	return &SiteVisitAPI{gw: gw}
}

// CreateSiteVisitRequest is the phase-1 payload: location plus at least one
// cable connection. Photos are attached later through UploadPhotos.
type CreateSiteVisitRequest struct {
	domain.Location
	CableConnections []domain.CableConnection `json:"cableConnections"`
}

// Validate gates the request locally so an incomplete form never produces
// an HTTP call.
func (r *CreateSiteVisitRequest) Validate() error {
	if r.HouseNo == "" || r.Area == "" || r.Street == "" ||
		r.City == "" || r.State == "" || r.Pincode == "" {
		return gateway.NewValidationError("Please fill in all address fields")
	}
	if len(r.CableConnections) == 0 {
		return gateway.NewValidationError("Please add at least one cable connection")
	}
	for _, c := range r.CableConnections {
		if c.FromColor == "" || c.ToColor == "" || c.Reason == "" {
			return gateway.NewValidationError("Please complete all cable connection fields")
		}
	}
	return nil
}

// Create records a new site visit for the technician. The visit is linked
// to the technician's parent company on the backend via the technician
// identity, not an explicit field here.
func (a *SiteVisitAPI) Create(ctx context.Context, technicianID int32, req *CreateSiteVisitRequest) (*domain.SiteVisit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out domain.SiteVisit
	if err := a.gw.Post(ctx, fmt.Sprintf("%s/%d", epSiteVisitTechnician, technicianID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByTechnician returns the visits a technician created. Full refetch.
func (a *SiteVisitAPI) ListByTechnician(ctx context.Context, technicianID int32) ([]domain.SiteVisit, error) {
	var out []domain.SiteVisit
	if err := a.gw.Get(ctx, fmt.Sprintf("%s/%d", epSiteVisitTechnician, technicianID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByCompany returns the visits made by a company's technicians.
func (a *SiteVisitAPI) ListByCompany(ctx context.Context, companyID int32) ([]domain.SiteVisit, error) {
	var out []domain.SiteVisit
	if err := a.gw.Get(ctx, fmt.Sprintf("%s/%d", epSiteVisitCompany, companyID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every visit across all companies. Admin only.
func (a *SiteVisitAPI) ListAll(ctx context.Context) ([]domain.SiteVisit, error) {
	var out []domain.SiteVisit
	if err := a.gw.Get(ctx, epSiteVisitAdminAll, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one visit in full detail, photos and cable connections
// included. A non-nil companyID scopes the fetch so the backend can verify
// the visit belongs to that company.
func (a *SiteVisitAPI) Get(ctx context.Context, id int32, companyID *int32) (*domain.SiteVisit, error) {
	var query map[string]string
	if companyID != nil {
		query = map[string]string{"companyId": strconv.FormatInt(int64(*companyID), 10)}
	}
	var out domain.SiteVisit
	if err := a.gw.Get(ctx, fmt.Sprintf("%s/%d", epSiteVisits, id), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPhotos attaches photographic evidence to an existing visit. Phase 2
// of the visit lifecycle; rejected locally when no files are given.
func (a *SiteVisitAPI) UploadPhotos(ctx context.Context, siteVisitID int32, files []gateway.File) error {
	if len(files) == 0 {
		return gateway.NewValidationError("Please select at least one photo")
	}
	return a.gw.Upload(ctx, fmt.Sprintf("%s/%d/photos", epSiteVisits, siteVisitID), "photos", files, nil)
}
