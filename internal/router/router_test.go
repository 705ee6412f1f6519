package router

import (
	"testing"

	"compass-field-client/internal/domain"
	"compass-field-client/internal/session"

	"github.com/stretchr/testify/assert"
)

func signedIn(role domain.Role) session.Snapshot {
	return session.Snapshot{
		State: session.StateSignedIn,
		Token: "abc123",
		User:  &domain.User{ID: 7, Name: "J. Doe"},
		Role:  role,
	}
}

func TestResolve(t *testing.T) {
	t.Run("Hydrating Shows Loading Only", func(t *testing.T) {
		assert.Equal(t, RouteLoading, Resolve(session.Snapshot{State: session.StateHydrating}))
	})

	t.Run("Signed Out Lands On Landing", func(t *testing.T) {
		assert.Equal(t, RouteLanding, Resolve(session.Snapshot{State: session.StateSignedOut}))
	})

	t.Run("Each Role Lands On Its Own Dashboard", func(t *testing.T) {
		tests := []struct {
			role domain.Role
			want Route
		}{
			{domain.RoleDistributor, RouteDistributorDashboard},
			{domain.RoleCompany, RouteCompanyDashboard},
			{domain.RoleTechnician, RouteTechnicianDashboard},
			{domain.RoleAdmin, RouteAdminDashboard},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, Resolve(signedIn(tt.role)), string(tt.role))
		}
	})
}

func TestAuthorize_RoleIsolation(t *testing.T) {
	dashboards := []Route{
		RouteDistributorDashboard,
		RouteCompanyDashboard,
		RouteTechnicianDashboard,
		RouteAdminDashboard,
	}
	roles := []domain.Role{
		domain.RoleDistributor,
		domain.RoleCompany,
		domain.RoleTechnician,
		domain.RoleAdmin,
	}

	t.Run("Signed Out Never Reaches A Dashboard", func(t *testing.T) {
		snap := session.Snapshot{State: session.StateSignedOut}
		for _, d := range dashboards {
			granted, redirected := Authorize(d, snap)
			assert.True(t, redirected, string(d))
			assert.Equal(t, RouteLanding, granted, string(d))
		}
	})

	t.Run("Signed In Never Reaches A Foreign Dashboard", func(t *testing.T) {
		for _, role := range roles {
			snap := signedIn(role)
			own := DashboardFor(role)
			for _, d := range dashboards {
				granted, redirected := Authorize(d, snap)
				assert.Equal(t, own, granted, "%s requesting %s", role, d)
				assert.Equal(t, d != own, redirected, "%s requesting %s", role, d)
			}
		}
	})

	t.Run("Signed In Is Sent Home From Unauthenticated Screens", func(t *testing.T) {
		snap := signedIn(domain.RoleTechnician)
		for _, r := range []Route{RouteLanding, RouteLogin, RouteRoleSelection, RouteAdminLogin} {
			granted, redirected := Authorize(r, snap)
			assert.True(t, redirected, string(r))
			assert.Equal(t, RouteTechnicianDashboard, granted, string(r))
		}
	})

	t.Run("Signed Out Reaches Unauthenticated Screens", func(t *testing.T) {
		snap := session.Snapshot{State: session.StateSignedOut}
		for _, r := range []Route{
			RouteLanding, RouteLogin, RouteRoleSelection,
			RouteRegisterDistributor, RouteRegisterCompany,
			RouteRegisterTechnician, RouteAdminLogin,
		} {
			granted, redirected := Authorize(r, snap)
			assert.False(t, redirected, string(r))
			assert.Equal(t, r, granted, string(r))
		}
	})

	t.Run("Hydrating Defers All Navigation", func(t *testing.T) {
		snap := session.Snapshot{State: session.StateHydrating}
		granted, redirected := Authorize(RouteTechnicianDashboard, snap)
		assert.True(t, redirected)
		assert.Equal(t, RouteLoading, granted)
	})
}

func TestPublicRolesExcludeAdmin(t *testing.T) {
	for _, r := range PublicRoles() {
		assert.NotEqual(t, domain.RoleAdmin, r)
	}
	assert.Len(t, PublicRoles(), 3)
}
