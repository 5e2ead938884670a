package permissions

// Permission is an atomic capability flag. The vocabulary is closed: the
// constants below are the full enumeration, and lookups against anything
// else resolve to "not granted". String values are camelCase because they
// double as the keys of the custom-permission override maps persisted in
// user profiles.
type Permission string

const (
	PermDashboard Permission = "dashboard"

	PermClientsStatus    Permission = "clientsStatus"
	PermClients          Permission = "clients"
	PermClientFileCenter Permission = "clientFileCenter"
	PermDocuments        Permission = "documents"
	PermUploadDocuments  Permission = "uploadDocuments"

	PermAddressBook  Permission = "addressBook"
	PermAppointments Permission = "appointments"
	PermTaxReturns   Permission = "taxReturns"

	PermTrackingCode       Permission = "trackingCode"
	PermReferrals          Permission = "referrals"
	PermMarketingMaterials Permission = "marketingMaterials"
	PermStore              Permission = "store"
	PermCommissions        Permission = "commissions"

	PermAcademy Permission = "academy"

	PermAdminManagement Permission = "adminManagement"
	PermDatabase        Permission = "database"
	PermGoogleAnalytics Permission = "googleAnalytics"
	PermAlerts          Permission = "alerts"
	PermSettings        Permission = "settings"
	PermReports         Permission = "reports"
)

var allPermissions = []Permission{
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
	PermAdminManagement,
	PermDatabase,
	PermGoogleAnalytics,
	PermAlerts,
	PermSettings,
	PermReports,
}

var permissionIndex = func() map[Permission]struct{} {
	idx := make(map[Permission]struct{}, len(allPermissions))
	for _, p := range allPermissions {
		idx[p] = struct{}{}
	}
	return idx
}()

// All returns the full permission enumeration in declaration order.
func All() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Valid reports whether the permission is part of the closed vocabulary.
func (p Permission) Valid() bool {
	_, ok := permissionIndex[p]
	return ok
}

// Set maps permissions to their granted state. Absence means not granted.
type Set map[Permission]bool

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ParseOverrides normalizes a custom-permission override map as stored in a
// user profile. Values are accepted only when strictly boolean true or false;
// a stray string or object never grants anything. Keys outside the closed
// vocabulary are dropped.
func ParseOverrides(raw map[string]any) Set {
	if len(raw) == 0 {
		return nil
	}
	out := make(Set, len(raw))
	for key, value := range raw {
		perm := Permission(key)
		if !perm.Valid() {
			continue
		}
		granted, ok := value.(bool)
		if !ok {
			continue
		}
		out[perm] = granted
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
