package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsReturnsCopyForEveryRole(t *testing.T) {
	for _, role := range Roles() {
		got := Defaults(role)
		require.NotNil(t, got, "role %s", role)

		got[PermDatabase] = true
		again := Defaults(role)
		if role != RoleSuperAdmin {
			assert.False(t, Has(again, PermDatabase), "mutating a returned map must not touch the table for %s", role)
		}
	}
}

func TestRoleCeiling(t *testing.T) {
	admin := Defaults(RoleAdmin)
	super := Defaults(RoleSuperAdmin)

	for _, perm := range []Permission{PermDatabase, PermAdminManagement, PermGoogleAnalytics, PermClientFileCenter, PermAlerts} {
		assert.False(t, Has(admin, perm), "admin must not hold %s by default", perm)
		assert.True(t, Has(super, perm), "super_admin must hold %s", perm)
	}

	// super_admin dominates admin across the whole vocabulary.
	for _, perm := range All() {
		if Has(admin, perm) {
			assert.True(t, Has(super, perm), "super_admin missing %s that admin holds", perm)
		}
	}
}

func TestLeadGate(t *testing.T) {
	lead := Defaults(RoleLead)
	granted, present := lead[PermDashboard]
	require.True(t, present, "lead table must carry an explicit dashboard entry")
	assert.False(t, granted, "lead dashboard must be denied while pending")
}

func TestAffiliateHasNoClientDataAccess(t *testing.T) {
	affiliate := Defaults(RoleAffiliate)
	for _, perm := range SectionPermissions(SectionClientManagement) {
		assert.False(t, Has(affiliate, perm), "affiliate must not reach client data via %s", perm)
	}
	assert.True(t, Has(affiliate, PermTrackingCode))
	assert.True(t, Has(affiliate, PermStore))
}

func TestEditableCeilings(t *testing.T) {
	adminEditable := Editable(RoleAdmin)
	assert.NotContains(t, adminEditable, PermAdminManagement)
	assert.NotContains(t, adminEditable, PermDatabase)

	require.ElementsMatch(t, All(), Editable(RoleSuperAdmin))
	assert.Empty(t, Editable(RoleLead))
	assert.Empty(t, Editable(Role("ghost")))

	assert.NotContains(t, Editable(RoleTaxPreparer), PermDatabase)
	assert.NotContains(t, Editable(RoleAffiliate), PermClients)
	assert.NotContains(t, Editable(RoleClient), PermAdminManagement)
}

func TestEditableListsAreKnownPermissions(t *testing.T) {
	for _, role := range Roles() {
		for _, perm := range Editable(role) {
			assert.True(t, perm.Valid(), "role %s lists unknown editable permission %q", role, perm)
		}
	}
}

func TestFilterEditable(t *testing.T) {
	patch := Set{
		PermAddressBook: true,
		PermDatabase:    true, // must be stripped for a preparer
		PermClients:     false,
	}
	filtered := FilterEditable(RoleTaxPreparer, patch)
	require.Equal(t, Set{PermAddressBook: true, PermClients: false}, filtered)

	assert.Nil(t, FilterEditable(RoleLead, patch))
	assert.Nil(t, FilterEditable(RoleTaxPreparer, nil))
}

func TestEveryPermissionBelongsToExactlyOneSection(t *testing.T) {
	seen := make(map[Permission]Section)
	for _, section := range Sections() {
		for _, perm := range SectionPermissions(section) {
			prev, dup := seen[perm]
			require.False(t, dup, "%s appears in both %s and %s", perm, prev, section)
			seen[perm] = section
		}
	}
	for _, perm := range All() {
		_, ok := seen[perm]
		assert.True(t, ok, "%s is orphaned from every section", perm)
	}
}

func TestSectionForAgreesWithTables(t *testing.T) {
	for _, section := range Sections() {
		assert.NotEmpty(t, SectionLabel(section))
		for _, perm := range SectionPermissions(section) {
			got, ok := SectionFor(perm)
			require.True(t, ok)
			assert.Equal(t, section, got)
		}
	}
	_, ok := SectionFor(Permission("madeUp"))
	assert.False(t, ok)
	assert.Nil(t, SectionPermissions(Section("madeUp")))
}

func TestEveryPermissionHasExactlyOneRoute(t *testing.T) {
	seen := make(map[string]Permission)
	for _, perm := range All() {
		route := RouteFor(perm)
		require.NotEmpty(t, route, "%s has no route", perm)
		prev, dup := seen[route]
		require.False(t, dup, "%s and %s share route %s", prev, perm, route)
		seen[route] = perm
	}
	assert.Empty(t, RouteFor(Permission("madeUp")))
}

func TestRouteForRoleFillsWildcard(t *testing.T) {
	assert.Equal(t, "/dashboard/tax_preparer/clients", RouteForRole(PermClients, RoleTaxPreparer))
	assert.Equal(t, "/dashboard/client", RouteForRole(PermDashboard, RoleClient))
	assert.Empty(t, RouteForRole(Permission("madeUp"), RoleClient))
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles() {
		got, ok := ParseRole(string(role))
		require.True(t, ok)
		assert.Equal(t, role, got)
	}
	_, ok := ParseRole("root")
	assert.False(t, ok)
}

func TestBuildMenuFiltersAndFillsRoutes(t *testing.T) {
	resolver := NewResolver(nil)

	menu := BuildMenu(RoleAffiliate, resolver.Resolve(RoleAffiliate, nil))
	require.Len(t, menu, 2)
	assert.Equal(t, SectionOverview, menu[0].Section)
	assert.Equal(t, SectionMarketing, menu[1].Section)
	assert.Equal(t, "Marketing & Referrals", menu[1].Label)
	for _, item := range menu[1].Items {
		assert.Contains(t, item.Route, "/dashboard/affiliate/")
	}

	// A pending lead gets no menu at all.
	assert.Empty(t, BuildMenu(RoleLead, resolver.Resolve(RoleLead, nil)))
}
