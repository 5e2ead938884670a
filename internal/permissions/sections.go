package permissions

// Section is a named grouping of permissions used by navigation. Sections
// carry no enforcement semantics; they are a presentational view over the
// permission vocabulary.
type Section string

const (
	SectionOverview         Section = "overview"
	SectionClientManagement Section = "clientManagement"
	SectionCRM              Section = "crm"
	SectionMarketing        Section = "marketing"
	SectionTraining         Section = "training"
	SectionAdministration   Section = "administration"
)

var sectionLabels = map[Section]string{
	SectionOverview:         "Overview",
	SectionClientManagement: "Client Management",
	SectionCRM:              "CRM & Scheduling",
	SectionMarketing:        "Marketing & Referrals",
	SectionTraining:         "Training",
	SectionAdministration:   "Administration",
}

// sectionGrants assigns every permission to exactly one section. The
// section tests verify totality so a new permission cannot silently become
// unreachable from section-based navigation.
var sectionGrants = map[Section][]Permission{
	SectionOverview: {PermDashboard},
	SectionClientManagement: {
		PermClientsStatus,
		PermClients,
		PermClientFileCenter,
		PermDocuments,
		PermUploadDocuments,
	},
	SectionCRM: {
		PermAddressBook,
		PermAppointments,
		PermTaxReturns,
	},
	SectionMarketing: {
		PermTrackingCode,
		PermReferrals,
		PermMarketingMaterials,
		PermStore,
		PermCommissions,
	},
	SectionTraining: {PermAcademy},
	SectionAdministration: {
		PermAdminManagement,
		PermDatabase,
		PermGoogleAnalytics,
		PermAlerts,
		PermSettings,
		PermReports,
	},
}

// Sections returns every section in display order.
func Sections() []Section {
	return []Section{
		SectionOverview,
		SectionClientManagement,
		SectionCRM,
		SectionMarketing,
		SectionTraining,
		SectionAdministration,
	}
}

// SectionPermissions returns the permissions grouped under the section, in
// display order. Unknown sections yield nil.
func SectionPermissions(section Section) []Permission {
	perms, ok := sectionGrants[section]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// SectionLabel returns the human-readable label for the section.
func SectionLabel(section Section) string {
	return sectionLabels[section]
}

// SectionFor returns the section a permission belongs to.
func SectionFor(perm Permission) (Section, bool) {
	for _, section := range Sections() {
		for _, p := range sectionGrants[section] {
			if p == perm {
				return section, true
			}
		}
	}
	return "", false
}
