package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOverrideWins(t *testing.T) {
	resolver := NewResolver(nil)

	for _, role := range Roles() {
		defaults := Defaults(role)
		for _, perm := range All() {
			denied := resolver.Resolve(role, Set{perm: false})
			assert.False(t, Has(denied, perm), "role %s perm %s: override false must suppress", role, perm)

			granted := resolver.Resolve(role, Set{perm: true})
			assert.True(t, Has(granted, perm), "role %s perm %s: override true must grant", role, perm)

			// Untouched keys keep their defaults.
			for _, other := range All() {
				if other == perm {
					continue
				}
				assert.Equal(t, Has(defaults, other), Has(denied, other), "role %s: override of %s must not leak into %s", role, perm, other)
			}
		}
	}
}

func TestResolveIdempotentWithoutOverrides(t *testing.T) {
	resolver := NewResolver(nil)

	for _, role := range Roles() {
		plain := resolver.Resolve(role, nil)
		withEmpty := resolver.Resolve(role, Set{})
		require.Equal(t, plain, withEmpty, "role %s: nil and empty overrides must resolve identically", role)
		require.Equal(t, Defaults(role), plain, "role %s: no overrides must equal defaults", role)
	}
}

func TestResolveUnknownRoleFallsBackToClient(t *testing.T) {
	resolver := NewResolver(nil)

	got := resolver.Resolve(Role("intern"), nil)
	require.Equal(t, Defaults(RoleClient), got)

	// Overrides still merge on top of the fallback defaults.
	suppressed := resolver.Resolve(Role("intern"), Set{PermTrackingCode: false})
	assert.False(t, Has(suppressed, PermTrackingCode))
}

func TestResolveDoesNotMutateDefaults(t *testing.T) {
	resolver := NewResolver(nil)

	first := resolver.Resolve(RoleClient, Set{PermDashboard: false})
	assert.False(t, Has(first, PermDashboard))

	second := resolver.Resolve(RoleClient, nil)
	assert.True(t, Has(second, PermDashboard), "a previous override must never bleed into the static table")
}

func TestHasStrictness(t *testing.T) {
	assert.False(t, Has(Set{}, PermDashboard))
	assert.False(t, Has(nil, PermDashboard))
	assert.False(t, Has(Set{PermDashboard: false}, PermDashboard))
	assert.True(t, Has(Set{PermDashboard: true}, PermDashboard))
	assert.False(t, Has(Set{PermDashboard: true}, Permission("madeUp")))
}

func TestParseOverridesNormalization(t *testing.T) {
	got := ParseOverrides(map[string]any{
		"trackingCode":    false,
		"clients":         true,
		"database":        "true", // stray string never grants
		"alerts":          1,      // nor does a number
		"notAPermission":  true,   // unknown keys dropped
		"uploadDocuments": true,
	})
	require.Equal(t, Set{
		PermTrackingCode:    false,
		PermClients:         true,
		PermUploadDocuments: true,
	}, got)

	assert.Nil(t, ParseOverrides(nil))
	assert.Nil(t, ParseOverrides(map[string]any{}))
	assert.Nil(t, ParseOverrides(map[string]any{"database": "yes"}))
}

func TestViewAsFlags(t *testing.T) {
	resolver := NewResolver(nil)

	preview := resolver.ViewAs(RoleAdmin, RoleClient, nil)
	assert.True(t, preview.IsViewingAsOtherRole)
	assert.Equal(t, RoleAdmin, preview.ActualRole)
	require.Equal(t, Defaults(RoleClient), preview.Permissions)

	self := resolver.ViewAs(RoleAdmin, RoleAdmin, nil)
	assert.False(t, self.IsViewingAsOtherRole)
	assert.Equal(t, RoleAdmin, self.ActualRole)
}

func TestViewAsAppliesOverridesToPreviewedRole(t *testing.T) {
	resolver := NewResolver(nil)

	preview := resolver.ViewAs(RoleSuperAdmin, RoleAffiliate, Set{PermStore: false})
	assert.False(t, Has(preview.Permissions, PermStore))
	assert.True(t, Has(preview.Permissions, PermTrackingCode))
	// Previewing never grants the previewer's own breadth.
	assert.False(t, Has(preview.Permissions, PermDatabase))
}

func TestEndToEndTaxPreparer(t *testing.T) {
	resolver := NewResolver(nil)

	set := resolver.Resolve(RoleTaxPreparer, nil)
	assert.True(t, Has(set, PermClients))
	assert.True(t, Has(set, PermAcademy))
	assert.False(t, Has(set, PermDatabase))

	editable := Editable(RoleTaxPreparer)
	assert.Contains(t, editable, PermAddressBook)
	assert.NotContains(t, editable, PermDatabase)
}

func TestEndToEndClientOverride(t *testing.T) {
	resolver := NewResolver(nil)

	require.True(t, Has(Defaults(RoleClient), PermTrackingCode), "client defaults grant trackingCode")
	set := resolver.Resolve(RoleClient, Set{PermTrackingCode: false})
	assert.False(t, Has(set, PermTrackingCode))
}
