// Package access maps role grants to the application areas an identity
// may use and decides, per navigation attempt, whether to permit the
// route or redirect. The role→area table is total and fixed at build
// time; every role resolves to at least one area.
package access

import "log/slog"

type Role string

const (
	RoleCommandCenter Role = "COMMAND_CENTER"
	RoleSAMUser       Role = "SAM_USER"
	RoleITUser        Role = "IT_USER"
)

// DefaultRole is assigned when an identity first authenticates and has
// no profile record yet.
const DefaultRole = RoleITUser

// DisplayName returns the human label used by the user-management views.
func (r Role) DisplayName() string {
	switch r {
	case RoleCommandCenter:
		return "Admin"
	case RoleSAMUser:
		return "SAM User"
	case RoleITUser:
		return "IT User"
	default:
		return "User"
	}
}

type Area string

const (
	AreaAdmin Area = "ADMIN"
	AreaSAM   Area = "SAM"
	AreaIT    Area = "IT"
)

// areaOrder is the declared enumeration order. It is the deterministic
// tie-break when a disallowed navigation has several candidate target
// areas.
var areaOrder = []Area{AreaAdmin, AreaSAM, AreaIT}

// DefaultArea is the system fallback when a role set maps to no area at
// all, which only happens on misconfiguration.
const DefaultArea = AreaAdmin

const (
	SignInRoute = "/login"
	SignUpRoute = "/register"
)

var areaDefaults = map[Area]string{
	AreaAdmin: "/",
	AreaSAM:   "/sam-booking",
	AreaIT:    "/it/user-management",
}

var areaRoutes = map[Area][]string{
	AreaAdmin: {"/", "/companies", "/products", "/price-configurations", "/sam-wishlist"},
	AreaSAM:   {"/sam-booking", "/sam-wishlist"},
	AreaIT:    {"/it/user-management"},
}

var rolePermissions = map[Role][]Area{
	RoleCommandCenter: {AreaAdmin},
	RoleSAMUser:       {AreaSAM},
	RoleITUser:        {AreaIT},
}

// DefaultRoute returns an area's landing route.
func DefaultRoute(area Area) string {
	return areaDefaults[area]
}

// RouteAllowed reports whether a route belongs to an area's permitted
// list.
func RouteAllowed(area Area, route string) bool {
	for _, r := range areaRoutes[area] {
		if r == route {
			return true
		}
	}
	return false
}

// AllowedAreas returns the union of the areas granted by roles, in
// declared area order. Unknown roles contribute nothing.
func AllowedAreas(roles []Role) []Area {
	granted := make(map[Area]bool)
	for _, role := range roles {
		for _, area := range rolePermissions[role] {
			granted[area] = true
		}
	}
	out := make([]Area, 0, len(granted))
	for _, area := range areaOrder {
		if granted[area] {
			out = append(out, area)
		}
	}
	return out
}

// AreaAllowed reports whether any role in the set grants the area.
func AreaAllowed(roles []Role, area Area) bool {
	for _, a := range AllowedAreas(roles) {
		if a == area {
			return true
		}
	}
	return false
}

// Decision is the outcome of resolving one navigation attempt.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

func allow() Decision                { return Decision{Allowed: true} }
func redirect(route string) Decision { return Decision{RedirectTo: route} }

// Resolver applies the permission map to navigation attempts. It holds
// no mutable state and performs no I/O; it re-runs on every role change
// and navigation event.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve decides whether roles may navigate to route within area. An
// empty role set means unauthenticated: only the sign-in and sign-up
// routes are permitted, everything else redirects to sign-in.
func (r *Resolver) Resolve(roles []Role, area Area, route string) Decision {
	if len(roles) == 0 {
		if route == SignInRoute || route == SignUpRoute {
			return allow()
		}
		return redirect(SignInRoute)
	}

	allowed := AllowedAreas(roles)
	if len(allowed) == 0 {
		// Misconfiguration: a non-empty role set granting nothing.
		r.logger.Warn("role set maps to no area, falling back to system default",
			"roles", roles, "fallback_area", DefaultArea)
		return redirect(areaDefaults[DefaultArea])
	}

	if !containsArea(allowed, area) {
		return redirect(areaDefaults[allowed[0]])
	}

	if !RouteAllowed(area, route) {
		return redirect(areaDefaults[area])
	}

	return allow()
}

// ResolveRoute resolves a navigation attempt identified by route alone,
// deriving the area from the permitted-route lists in declared order.
func (r *Resolver) ResolveRoute(roles []Role, route string) Decision {
	for _, area := range areaOrder {
		if RouteAllowed(area, route) && (len(roles) == 0 || AreaAllowed(roles, area)) {
			return r.Resolve(roles, area, route)
		}
	}
	// Route belongs to no area the caller may use; resolve against the
	// first area that lists it so the redirect rules apply.
	for _, area := range areaOrder {
		if RouteAllowed(area, route) {
			return r.Resolve(roles, area, route)
		}
	}
	// Unknown route entirely.
	if len(roles) == 0 {
		return r.Resolve(roles, DefaultArea, route)
	}
	allowed := AllowedAreas(roles)
	if len(allowed) == 0 {
		return r.Resolve(roles, DefaultArea, route)
	}
	return redirect(areaDefaults[allowed[0]])
}

func containsArea(areas []Area, area Area) bool {
	for _, a := range areas {
		if a == area {
			return true
		}
	}
	return false
}

// RolesFromStrings converts raw profile role values.
func RolesFromStrings(raw []string) []Role {
	out := make([]Role, 0, len(raw))
	for _, r := range raw {
		out = append(out, Role(r))
	}
	return out
}
