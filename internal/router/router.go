// Package router decides which screen of the app is reachable for a given
// session state. It is a pure function of a session snapshot; it performs no
// I/O and holds no state of its own.
package router

import (
	"compass-field-client/internal/domain"
	"compass-field-client/internal/session"
)

// Route identifies one screen of the app. Values mirror the app's
// navigation paths.
type Route string

const (
	RouteLoading Route = "loading"

	// Unauthenticated screens.
	RouteLanding             Route = "landing"
	RouteLogin               Route = "auth/login"
	RouteRoleSelection       Route = "auth/role-selection"
	RouteRegisterDistributor Route = "auth/register-distributor"
	RouteRegisterCompany     Route = "auth/register-company"
	RouteRegisterTechnician  Route = "auth/register-technician"
	RouteAdminLogin          Route = "admin/login"

	// One dashboard per role.
	RouteDistributorDashboard Route = "distributor/dashboard"
	RouteCompanyDashboard     Route = "company/dashboard"
	RouteTechnicianDashboard  Route = "technician/dashboard"
	RouteAdminDashboard       Route = "admin/dashboard"
)

// DashboardFor maps a role to its single dashboard route.
func DashboardFor(r domain.Role) Route {
	switch r {
	case domain.RoleDistributor:
		return RouteDistributorDashboard
	case domain.RoleCompany:
		return RouteCompanyDashboard
	case domain.RoleTechnician:
		return RouteTechnicianDashboard
	case domain.RoleAdmin:
		return RouteAdminDashboard
	}
	// Unreachable for parsed roles; a zero Role falls back to landing.
	return RouteLanding
}

// IsDashboard reports whether the route requires a signed-in session.
func IsDashboard(r Route) bool {
	switch r {
	case RouteDistributorDashboard, RouteCompanyDashboard,
		RouteTechnicianDashboard, RouteAdminDashboard:
		return true
	}
	return false
}

// Resolve picks the screen the app lands on for the given session state:
// a loading indicator while hydrating, the landing screen when signed out,
// and the role's own dashboard when signed in.
func Resolve(s session.Snapshot) Route {
	switch s.State {
	case session.StateHydrating:
		return RouteLoading
	case session.StateSignedIn:
		if s.IsSignedIn() {
			return DashboardFor(s.Role)
		}
		return RouteLanding
	case session.StateSignedOut:
		return RouteLanding
	}
	return RouteLanding
}

// Authorize grants the requested route or redirects. A signed-out session
// asking for any dashboard is sent to landing; a signed-in session asking
// for a foreign dashboard or an unauthenticated screen is sent to its own
// dashboard. The returned bool reports whether a redirect happened.
func Authorize(requested Route, s session.Snapshot) (Route, bool) {
	switch s.State {
	case session.StateHydrating:
		// No navigation decision until hydration completes.
		return RouteLoading, requested != RouteLoading
	case session.StateSignedOut:
		if IsDashboard(requested) {
			return RouteLanding, true
		}
		return requested, false
	case session.StateSignedIn:
		own := DashboardFor(s.Role)
		if requested == own {
			return own, false
		}
		return own, true
	}
	return RouteLanding, true
}

// PublicRoles is the set offered on the public role-selection screen. Admin
// is deliberately absent: the privileged variant is reachable only through
// the separate admin login path.
func PublicRoles() []domain.Role {
	return []domain.Role{domain.RoleDistributor, domain.RoleCompany, domain.RoleTechnician}
}
