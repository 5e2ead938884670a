package permissions

// defaultGrants is the authoritative baseline: for each role, the partial
// permission map it starts from. Unlisted permissions are not granted.
// Explicit false entries are hard denials that the admin editor surfaces as
// toggled-off rather than missing.
//
// Policy encoded here, not in the database:
//   - super_admin strictly dominates admin.
//   - admin is deliberately denied adminManagement, database, googleAnalytics,
//     clientFileCenter and alerts. This is a security boundary, not a UI
//     preference.
//   - tax_preparer is scoped to client, document and CRM work.
//   - affiliate is scoped to marketing, store and tracking; no client data.
//   - lead carries dashboard:false, the pending-approval signal consumers
//     must check before anything else.
//   - client has the smallest authenticated footprint.
var defaultGrants = map[Role]Set{
	RoleSuperAdmin: {
		PermDashboard:          true,
		PermClientsStatus:      true,
		PermClients:            true,
		PermClientFileCenter:   true,
		PermDocuments:          true,
		PermUploadDocuments:    true,
		PermAddressBook:        true,
		PermAppointments:       true,
		PermTaxReturns:         true,
		PermTrackingCode:       true,
		PermReferrals:          true,
		PermMarketingMaterials: true,
		PermStore:              true,
		PermCommissions:        true,
		PermAcademy:            true,
		PermAdminManagement:    true,
		PermDatabase:           true,
		PermGoogleAnalytics:    true,
		PermAlerts:             true,
		PermSettings:           true,
		PermReports:            true,
	},
	RoleAdmin: {
		PermDashboard:          true,
		PermClientsStatus:      true,
		PermClients:            true,
		PermClientFileCenter:   false,
		PermDocuments:          true,
		PermUploadDocuments:    true,
		PermAddressBook:        true,
		PermAppointments:       true,
		PermTaxReturns:         true,
		PermTrackingCode:       true,
		PermReferrals:          true,
		PermMarketingMaterials: true,
		PermStore:              true,
		PermCommissions:        true,
		PermAcademy:            true,
		PermAdminManagement:    false,
		PermDatabase:           false,
		PermGoogleAnalytics:    false,
		PermAlerts:             false,
		PermSettings:           true,
		PermReports:            true,
	},
	RoleTaxPreparer: {
		PermDashboard:        true,
		PermClientsStatus:    true,
		PermClients:          true,
		PermClientFileCenter: true,
		PermDocuments:        true,
		PermUploadDocuments:  true,
		PermAddressBook:      true,
		PermAppointments:     true,
		PermTaxReturns:       true,
		PermAcademy:          true,
	},
	RoleAffiliate: {
		PermDashboard:          true,
		PermTrackingCode:       true,
		PermReferrals:          true,
		PermMarketingMaterials: true,
		PermStore:              true,
		PermCommissions:        true,
	},
	RoleLead: {
		PermDashboard: false,
	},
	RoleClient: {
		PermDashboard:       true,
		PermDocuments:       true,
		PermUploadDocuments: true,
		PermTrackingCode:    true,
		PermReferrals:       true,
	},
}

// Defaults returns a copy of the baseline permission map for the role.
// Unknown roles fall back to the client defaults, the most restrictive
// authenticated baseline. The fallback is deliberate: rendering stays
// resilient when a stale or mistyped role string reaches this layer, and a
// bad role never widens access. Resolver logs the event; this lookup stays
// pure.
func Defaults(role Role) Set {
	grants, ok := defaultGrants[role]
	if !ok {
		grants = defaultGrants[RoleClient]
	}
	return grants.Clone()
}
