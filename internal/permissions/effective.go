package permissions

// View is the result of resolving permissions for an administrative
// "view as role" preview. Permissions reflect the effective (previewed)
// role; ActualRole records who is really looking.
//
// Security contract: a View is a display mechanism only. It must never be
// the sole gate for payments, data mutation or any other state change. The
// calling layer has to verify that ActualRole may impersonate at all, and
// has to re-check ActualRole's real permissions before allowing a write.
// Trusting the previewed set for writes is the classic privilege-confusion
// bug in this kind of system.
type View struct {
	Permissions          Set
	IsViewingAsOtherRole bool
	ActualRole           Role
}

// ViewAs computes the permissions an actor with actualRole would see when
// previewing the portal as effectiveRole. Overrides apply to the previewed
// set the same way they would for a real user of that role. The actor's own
// role and stored overrides are never mutated.
func (r *Resolver) ViewAs(actualRole, effectiveRole Role, overrides Set) View {
	return View{
		Permissions:          r.Resolve(effectiveRole, overrides),
		IsViewingAsOtherRole: actualRole != effectiveRole,
		ActualRole:           actualRole,
	}
}
