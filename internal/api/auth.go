// Package api holds the per-role resource contracts against the backend.
// Each call is a stateless request/response pair on the gateway; nothing
// here retries, paginates, or caches.
package api

import (
	"context"
	"errors"
	"fmt"

	"compass-field-client/internal/domain"
	"compass-field-client/internal/gateway"
)

// Backend REST endpoints, grouped the way the backend namespaces them.
const (
	epLogin               = "/api/Auth/login"
	epRegisterDistributor = "/api/Auth/register-distributor"
	epRegisterCompany     = "/api/Auth/register-company"
	epRegisterTechnician  = "/api/Auth/register-technician"

	epSiteVisits          = "/api/SiteVisits"
	epSiteVisitTechnician = "/api/SiteVisits/technician"
	epSiteVisitCompany    = "/api/SiteVisits/company"
	epSiteVisitAdminAll   = "/api/SiteVisits/admin/all"

	epDistributors = "/api/User/distributors"
	epCompanies    = "/api/User/companies"
	epTechnicians  = "/api/User/technicians"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAdmin           = errors.New("this login is for administrators only")
)

// authResponse is the backend's reply shape for login and registration.
type authResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	Token    string      `json:"token"`
	UserType string      `json:"userType"`
	UserData domain.User `json:"userData"`
}

// LoginResult carries everything the session manager needs after a
// successful login.
type LoginResult struct {
	Token string
	Role  domain.Role
	User  domain.User
}

// AuthAPI covers the public authentication operations.
type AuthAPI struct {
	gw *gateway.Gateway
}

func NewAuthAPI(gw *gateway.Gateway) *AuthAPI {
	return &AuthAPI{gw: gw}
}

// Login authenticates any role with email and password.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, gateway.NewValidationError("Please fill in all fields")
	}

	body := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := a.gw.Post(ctx, epLogin, body, &out); err != nil {
		if gateway.IsKind(err, gateway.KindUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !out.Success || out.Token == "" {
		if out.Message != "" {
			return nil, gateway.NewValidationError(out.Message)
		}
		return nil, ErrInvalidCredentials
	}

	role, err := domain.ParseRole(out.UserType)
	if err != nil {
		return nil, fmt.Errorf("login response: %w", err)
	}

	return &LoginResult{Token: out.Token, Role: role, User: out.UserData}, nil
}

// AdminLogin authenticates against the same endpoint but rejects any
// non-admin account: the privileged dashboard is only reachable through
// this path.
func (a *AuthAPI) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	result, err := a.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if result.Role != domain.RoleAdmin {
		return nil, ErrNotAdmin
	}
	return result, nil
}

// DistributorRegistration is the admin-submitted form for a new distributor.
type DistributorRegistration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	MobileNumber    string `json:"mobileNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r *DistributorRegistration) Validate() error {
	if r.Name == "" || r.Email == "" || r.MobileNumber == "" || r.Password == "" {
		return gateway.NewValidationError("Please fill in all fields")
	}
	if r.Password != r.ConfirmPassword {
		return gateway.NewValidationError("Passwords do not match")
	}
	return nil
}

// CompanyRegistration is the public self-registration form. ReferCode is
// optional and links the company to a sponsoring distributor.
type CompanyRegistration struct {
	CompanyName     string `json:"companyName"`
	CompanyEmail    string `json:"companyEmail"`
	GSTNumber       string `json:"gstNumber"`
	MobileNumber    string `json:"mobileNumber"`
	CompanyAddress  string `json:"companyAddress"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ReferCode       string `json:"referCode"`
}

func (r *CompanyRegistration) Validate() error {
	if r.CompanyName == "" || r.CompanyEmail == "" || r.GSTNumber == "" ||
		r.MobileNumber == "" || r.CompanyAddress == "" || r.Password == "" {
		return gateway.NewValidationError("Please fill in all fields")
	}
	if r.Password != r.ConfirmPassword {
		return gateway.NewValidationError("Passwords do not match")
	}
	return nil
}

// TechnicianRegistration is the company-submitted form for a new technician.
type TechnicianRegistration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	MobileNumber    string `json:"mobileNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r *TechnicianRegistration) Validate() error {
	if r.Name == "" || r.Email == "" || r.MobileNumber == "" || r.Password == "" {
		return gateway.NewValidationError("Please fill in all fields")
	}
	if r.Password != r.ConfirmPassword {
		return gateway.NewValidationError("Passwords do not match")
	}
	return nil
}

// RegisterDistributor creates a distributor account. Admin-only on the
// backend side.
func (a *AuthAPI) RegisterDistributor(ctx context.Context, req *DistributorRegistration) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return a.register(ctx, epRegisterDistributor, req)
}

// RegisterCompany creates a company account. Public self-registration; also
// used by distributors to register companies under themselves via ReferCode.
func (a *AuthAPI) RegisterCompany(ctx context.Context, req *CompanyRegistration) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return a.register(ctx, epRegisterCompany, req)
}

// RegisterTechnician creates a technician under the given company.
func (a *AuthAPI) RegisterTechnician(ctx context.Context, companyID int32, req *TechnicianRegistration) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return a.register(ctx, fmt.Sprintf("%s/%d", epRegisterTechnician, companyID), req)
}

// register posts a registration form. Fire-and-forget from the caller's
// perspective: there is no idempotency key, so a retried submission after a
// timeout may create a duplicate entity.
func (a *AuthAPI) register(ctx context.Context, path string, body any) error {
	var out authResponse
	if err := a.gw.Post(ctx, path, body, &out); err != nil {
		return err
	}
	if !out.Success && out.Message != "" {
		return gateway.NewValidationError(out.Message)
	}
	return nil
}
