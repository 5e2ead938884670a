package permissions

import "log/slog"

// Resolver computes effective permission sets from role defaults plus
// per-user overrides. It carries a logger solely so the unknown-role
// fallback is observable; resolution itself is a pure merge.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver constructs a Resolver. A nil logger falls back to slog.Default.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve merges custom overrides on top of the role's default grants.
// Override wins per key, in both directions: an override false suppresses a
// default grant, an override true adds one. Nil or empty overrides behave
// identically to no overrides at all.
//
// Resolve performs a purely mechanical merge. It does not check override
// keys against the role's editable list; callers that accept end-user input
// into overrides must pre-filter through Editable before persisting.
func (r *Resolver) Resolve(role Role, overrides Set) Set {
	if !role.Valid() {
		r.logger.Warn("unknown role, falling back to client defaults", slog.String("role", string(role)))
	}
	effective := Defaults(role)
	for perm, granted := range overrides {
		effective[perm] = granted
	}
	return effective
}

// Has reports whether the set grants the permission. Only an entry strictly
// equal to true counts; absent and false are both denials. Unknown
// permissions are always denied.
func Has(set Set, perm Permission) bool {
	return set[perm]
}
