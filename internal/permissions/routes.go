package permissions

import "strings"

// permissionRoutes maps every permission to its canonical navigation
// destination. The "*" segment is filled with the viewer's role slug by the
// frontend router.
var permissionRoutes = map[Permission]string{
	PermDashboard:          "/dashboard/*",
	PermClientsStatus:      "/dashboard/*/clients/status",
	PermClients:            "/dashboard/*/clients",
	PermClientFileCenter:   "/dashboard/*/file-center",
	PermDocuments:          "/dashboard/*/documents",
	PermUploadDocuments:    "/dashboard/*/documents/upload",
	PermAddressBook:        "/dashboard/*/address-book",
	PermAppointments:       "/dashboard/*/appointments",
	PermTaxReturns:         "/dashboard/*/returns",
	PermTrackingCode:       "/dashboard/*/tracking",
	PermReferrals:          "/dashboard/*/referrals",
	PermMarketingMaterials: "/dashboard/*/marketing",
	PermStore:              "/dashboard/*/store",
	PermCommissions:        "/dashboard/*/commissions",
	PermAcademy:            "/dashboard/*/academy",
	PermAdminManagement:    "/dashboard/*/admin",
	PermDatabase:           "/dashboard/*/database",
	PermGoogleAnalytics:    "/dashboard/*/analytics",
	PermAlerts:             "/dashboard/*/alerts",
	PermSettings:           "/dashboard/*/settings",
	PermReports:            "/dashboard/*/reports",
}

// RouteFor returns the path template associated with the permission, or ""
// for anything outside the vocabulary.
func RouteFor(perm Permission) string {
	return permissionRoutes[perm]
}

// RouteForRole returns the permission's route with the wildcard segment
// filled in with the role slug.
func RouteForRole(perm Permission, role Role) string {
	route := permissionRoutes[perm]
	if route == "" {
		return ""
	}
	return strings.Replace(route, "*", string(role), 1)
}
