package domain

import (
	"sort"
	"strings"
)

// Section is an area of the admin panel that can be granted to a role.
type Section string

const (
	SectionUsers      Section = "users"
	SectionSettings   Section = "settings"
	SectionContent    Section = "content"
	SectionMaterials  Section = "materials"
	SectionCourses    Section = "courses"
	SectionMarketing  Section = "marketing"
	SectionAdmissions Section = "admissions"
)

// AllSections lists every admin section in navigation order.
var AllSections = []Section{
	SectionUsers,
	SectionSettings,
	SectionContent,
	SectionMaterials,
	SectionCourses,
	SectionMarketing,
	SectionAdmissions,
}

const (
	RouteHome             = "/"
	RouteLogin            = "/login"
	RouteRegister         = "/register"
	RouteLogout           = "/logout"
	RouteAdminDashboard   = "/admin/dashboard"
	RouteStudentDashboard = "/my-dashboard"
	RouteEnroll           = "/enroll"

	adminPrefix = "/admin"
)

type rolePolicy struct {
	administrative bool
	student        bool
	sections       []Section
}

// rolePolicies is the only place role capabilities are defined. Roles missing
// from the table have no capability at all.
var rolePolicies = map[Role]rolePolicy{
	RoleSuperAdmin: {
		administrative: true,
		sections:       AllSections,
	},
	RoleContentAdmin: {
		administrative: true,
		sections:       []Section{SectionContent, SectionMaterials, SectionCourses},
	},
	RoleAudienceAdmin: {
		administrative: true,
		sections:       []Section{SectionMarketing, SectionAdmissions},
	},
	RoleAdmissionsAdmin: {
		administrative: true,
		sections:       []Section{SectionAdmissions},
	},
	RoleUser: {
		student: true,
	},
}

// roleAliases maps retired role names onto the role they stand for.
var roleAliases = map[Role]Role{
	RoleLegacyAdmin: RoleSuperAdmin,
}

// Canonical resolves aliases. Unknown roles are returned unchanged.
func Canonical(role Role) Role {
	if target, ok := roleAliases[role]; ok {
		return target
	}
	return role
}

func policyFor(role Role) rolePolicy {
	return rolePolicies[Canonical(role)]
}

// Known reports whether role is part of the role enumeration (aliases included).
func Known(role Role) bool {
	_, ok := rolePolicies[Canonical(role)]
	return ok
}

// IsAdministrative reports whether role may enter the admin panel.
func IsAdministrative(role Role) bool {
	return policyFor(role).administrative
}

// IsStudent reports whether role holds a learner account with a personal
// course library.
func IsStudent(role Role) bool {
	return policyFor(role).student
}

// DefaultHomeFor returns where a role lands after authenticating.
func DefaultHomeFor(role Role) string {
	if IsAdministrative(role) {
		return RouteAdminDashboard
	}
	return RouteStudentDashboard
}

// VisibleSections returns the admin sections granted to role, in navigation order.
func VisibleSections(role Role) []Section {
	granted := policyFor(role).sections
	out := make([]Section, 0, len(granted))
	for _, s := range AllSections {
		for _, g := range granted {
			if g == s {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// CanSee reports whether role has been granted section.
func CanSee(role Role, section Section) bool {
	for _, s := range policyFor(role).sections {
		if s == section {
			return true
		}
	}
	return false
}

// Assignable reports whether role may be given to an account. Aliases and
// unknown roles are never assignable.
func Assignable(role Role) bool {
	_, ok := rolePolicies[role]
	return ok
}

// CanManageAccount reports whether actorID may change or delete the account
// targetID holding targetRole. Nobody manages their own account from the
// admin screen, and SuperAdmin accounts are immutable there.
func CanManageAccount(actorID, targetID string, targetRole Role) bool {
	if actorID == "" || actorID == targetID {
		return false
	}
	return Canonical(targetRole) != RoleSuperAdmin
}

// Requirement is the capability a route demands from an authenticated identity.
type Requirement struct {
	name   string
	allows func(Role) bool
}

// NewRequirement builds a requirement from an arbitrary role predicate.
func NewRequirement(name string, allows func(Role) bool) Requirement {
	return Requirement{name: name, allows: allows}
}

// RequireAuthenticated accepts any authenticated identity.
func RequireAuthenticated() Requirement {
	return NewRequirement("authenticated", func(Role) bool { return true })
}

// RequireAdministrative accepts administrative roles.
func RequireAdministrative() Requirement {
	return NewRequirement("administrative", IsAdministrative)
}

// RequireStudent accepts learner roles.
func RequireStudent() Requirement {
	return NewRequirement("student", IsStudent)
}

// RequireSection accepts roles that can see section.
func RequireSection(section Section) Requirement {
	return NewRequirement("section:"+string(section), func(r Role) bool {
		return CanSee(r, section)
	})
}

func (r Requirement) String() string {
	if r.name == "" {
		return "none"
	}
	return r.name
}

// Allows reports whether an identity holding role satisfies the requirement.
// The zero Requirement allows nobody.
func (r Requirement) Allows(role Role) bool {
	if r.allows == nil {
		return false
	}
	return r.allows(role)
}

// RouteRule binds a page route prefix to its requirement.
type RouteRule struct {
	Path        string
	Requirement Requirement
}

// PageRoutes is the guarded page surface. Paths are matched by segment prefix.
var PageRoutes = []RouteRule{
	{Path: RouteEnroll, Requirement: RequireAuthenticated()},
	{Path: RouteStudentDashboard, Requirement: RequireAuthenticated()},
	{Path: "/dashboard/my-courses", Requirement: RequireAuthenticated()},
	{Path: "/dashboard/profile", Requirement: RequireAuthenticated()},
	{Path: RouteAdminDashboard, Requirement: RequireAdministrative()},
	{Path: "/admin/users", Requirement: RequireSection(SectionUsers)},
	{Path: "/admin/settings", Requirement: RequireSection(SectionSettings)},
	{Path: "/admin/home", Requirement: RequireSection(SectionContent)},
	{Path: "/admin/blogs", Requirement: RequireSection(SectionContent)},
	{Path: "/admin/courses", Requirement: RequireSection(SectionCourses)},
	{Path: "/admin/materials", Requirement: RequireSection(SectionMaterials)},
	{Path: "/admin/analytics", Requirement: RequireSection(SectionMarketing)},
	{Path: "/admin/enrollments", Requirement: RequireSection(SectionAdmissions)},
	{Path: "/admin/counselling", Requirement: RequireSection(SectionAdmissions)},
}

// AdminResources maps academy API collections to the section that owns them.
var AdminResources = map[string]Section{
	"users":       SectionUsers,
	"settings":    SectionSettings,
	"home":        SectionContent,
	"blogs":       SectionContent,
	"courses":     SectionCourses,
	"materials":   SectionMaterials,
	"analytics":   SectionMarketing,
	"enrollments": SectionAdmissions,
	"counselling": SectionAdmissions,
}

// AdminResourceNames returns the keys of AdminResources in a stable order.
func AdminResourceNames() []string {
	names := make([]string, 0, len(AdminResources))
	for name := range AdminResources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequirementFor returns the requirement guarding path, and false for public paths.
// Unlisted paths under /admin require an administrative role.
func RequirementFor(path string) (Requirement, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	var (
		best    Requirement
		bestLen = -1
	)
	for _, rule := range PageRoutes {
		if hasSegmentPrefix(path, rule.Path) && len(rule.Path) > bestLen {
			best, bestLen = rule.Requirement, len(rule.Path)
		}
	}
	if bestLen >= 0 {
		return best, true
	}
	if hasSegmentPrefix(path, adminPrefix) {
		return RequireAdministrative(), true
	}
	return Requirement{}, false
}

// Permits reports whether an authenticated identity with role may open path.
func Permits(role Role, path string) bool {
	req, guarded := RequirementFor(path)
	if !guarded {
		return true
	}
	return req.Allows(role)
}

func hasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || prefix == "/" || path[len(prefix)] == '/'
}
