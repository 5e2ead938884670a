package permissions

// MenuItem is one navigable destination in the portal sidebar.
type MenuItem struct {
	Permission Permission `json:"permission"`
	Route      string     `json:"route"`
}

// MenuSection groups the items the viewer may actually reach.
type MenuSection struct {
	Section Section    `json:"section"`
	Label   string     `json:"label"`
	Items   []MenuItem `json:"items"`
}

// BuildMenu derives the section-grouped navigation for an effective
// permission set. Sections with no granted permission are omitted entirely;
// routes come back with the wildcard segment already filled for the role.
func BuildMenu(role Role, set Set) []MenuSection {
	var menu []MenuSection
	for _, section := range Sections() {
		var items []MenuItem
		for _, perm := range sectionGrants[section] {
			if !Has(set, perm) {
				continue
			}
			items = append(items, MenuItem{
				Permission: perm,
				Route:      RouteForRole(perm, role),
			})
		}
		if len(items) == 0 {
			continue
		}
		menu = append(menu, MenuSection{
			Section: section,
			Label:   SectionLabel(section),
			Items:   items,
		})
	}
	return menu
}
