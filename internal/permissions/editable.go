package permissions

// editableGrants lists, per role, the permissions an administrator's editor
// may expose as togglable for a user holding that role. This is a ceiling on
// the override write path, maintained independently from defaultGrants: a
// permission can be editable yet default to false, or granted by default yet
// locked. The pairings the tests pin down are the security-relevant ones:
// admin can never be handed adminManagement or database through this
// mechanism, and a lead can be granted nothing while pending.
var editableGrants = map[Role][]Permission{
	RoleSuperAdmin: allPermissions,
	RoleAdmin: {
		PermDashboard,
		PermClientsStatus,
		PermClients,
		PermClientFileCenter,
		PermDocuments,
		PermUploadDocuments,
		PermAddressBook,
		PermAppointments,
		PermTaxReturns,
		PermTrackingCode,
		PermReferrals,
		PermMarketingMaterials,
		PermStore,
		PermCommissions,
		PermAcademy,
		PermGoogleAnalytics,
		PermAlerts,
		PermSettings,
		PermReports,
	},
	RoleTaxPreparer: {
		PermDashboard,
		PermClientsStatus,
		PermClients,
		PermClientFileCenter,
		PermDocuments,
		PermUploadDocuments,
		PermAddressBook,
		PermAppointments,
		PermTaxReturns,
		PermAcademy,
		PermReports,
	},
	RoleAffiliate: {
		PermDashboard,
		PermTrackingCode,
		PermReferrals,
		PermMarketingMaterials,
		PermStore,
		PermCommissions,
		PermAcademy,
	},
	RoleLead: {},
	RoleClient: {
		PermDashboard,
		PermDocuments,
		PermUploadDocuments,
		PermAppointments,
		PermTrackingCode,
		PermReferrals,
	},
}

// Editable returns the permissions an administrator may toggle for a user
// holding the given role. Unknown roles get an empty list: nothing is
// editable for a role the system does not recognize.
func Editable(role Role) []Permission {
	perms, ok := editableGrants[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// CanEdit reports whether perm may be toggled for a user holding role.
func CanEdit(role Role, perm Permission) bool {
	for _, p := range editableGrants[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// FilterEditable drops every override entry that is not editable for the
// target role. This is the pre-filter the admin override write path runs
// before handing a patch to Resolver.Resolve or to storage.
func FilterEditable(role Role, overrides Set) Set {
	if len(overrides) == 0 {
		return nil
	}
	out := make(Set, len(overrides))
	for perm, granted := range overrides {
		if CanEdit(role, perm) {
			out[perm] = granted
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
