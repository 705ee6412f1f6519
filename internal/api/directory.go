package api

import (
	"context"
	"fmt"

	"compass-field-client/internal/domain"
	"compass-field-client/internal/gateway"
)

// DirectoryAPI covers the read-only user-directory listings. Every call is
// a full refetch; the backend enforces which role may ask for what.
type DirectoryAPI struct {
	gw *gateway.Gateway
}

func NewDirectoryAPI(gw *gateway.Gateway) *DirectoryAPI {
	return &DirectoryAPI{gw: gw}
}

// Distributors lists every registered distributor. Admin only.
func (a *DirectoryAPI) Distributors(ctx context.Context) ([]domain.Distributor, error) {
	var out []domain.Distributor
	if err := a.gw.Get(ctx, epDistributors, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Companies lists every registered company. Admin only.
func (a *DirectoryAPI) Companies(ctx context.Context) ([]domain.Company, error) {
	var out []domain.Company
	if err := a.gw.Get(ctx, epCompanies, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DistributorCompanies lists the companies registered under one distributor.
func (a *DirectoryAPI) DistributorCompanies(ctx context.Context, distributorID int32) ([]domain.Company, error) {
	var out []domain.Company
	if err := a.gw.Get(ctx, fmt.Sprintf("%s/%d/companies", epDistributors, distributorID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Technicians lists every registered technician. Admin only.
func (a *DirectoryAPI) Technicians(ctx context.Context) ([]domain.Technician, error) {
	var out []domain.Technician
	if err := a.gw.Get(ctx, epTechnicians, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CompanyTechnicians lists the technicians working under one company.
func (a *DirectoryAPI) CompanyTechnicians(ctx context.Context, companyID int32) ([]domain.Technician, error) {
	var out []domain.Technician
	if err := a.gw.Get(ctx, fmt.Sprintf("%s/%d/technicians", epCompanies, companyID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
