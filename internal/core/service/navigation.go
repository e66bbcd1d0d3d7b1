package service

import "github.com/saa-academy/portal/internal/core/domain"

// NavGroup names a block of navigation entries.
type NavGroup string

const (
	GroupPublic     NavGroup = "public"
	GroupAccount    NavGroup = "account"
	GroupDirector   NavGroup = "director"
	GroupContent    NavGroup = "content"
	GroupMarketing  NavGroup = "marketing"
	GroupAdmissions NavGroup = "admissions"
	GroupStudent    NavGroup = "student"
)

// NavEntry is a single navigation link or action.
type NavEntry struct {
	Label  string   `json:"label"`
	Route  string   `json:"route"`
	Group  NavGroup `json:"group"`
	Method string   `json:"method,omitempty"`
}

type catalogEntry struct {
	NavEntry
	// requirement is nil for public entries.
	requirement *domain.Requirement
}

func guarded(label, route string, group NavGroup, req domain.Requirement) catalogEntry {
	return catalogEntry{NavEntry: NavEntry{Label: label, Route: route, Group: group}, requirement: &req}
}

func public(label, route string) catalogEntry {
	return catalogEntry{NavEntry: NavEntry{Label: label, Route: route, Group: GroupPublic}}
}

var navCatalog = []catalogEntry{
	public("Home", domain.RouteHome),
	public("Courses", "/courses"),
	public("Blog", "/blog"),
	public("Counselling", "/counselling"),
	public("About", "/about"),
	public("Contact", "/contact"),
	public("Enroll", domain.RouteEnroll),

	guarded("Manage Users", "/admin/users", GroupDirector, domain.RequireSection(domain.SectionUsers)),
	guarded("Site Settings", "/admin/settings", GroupDirector, domain.RequireSection(domain.SectionSettings)),
	guarded("Home CMS", "/admin/home", GroupContent, domain.RequireSection(domain.SectionContent)),
	guarded("Manage Blogs", "/admin/blogs", GroupContent, domain.RequireSection(domain.SectionContent)),
	guarded("Manage Courses", "/admin/courses", GroupContent, domain.RequireSection(domain.SectionCourses)),
	guarded("Manage Materials", "/admin/materials", GroupContent, domain.RequireSection(domain.SectionMaterials)),
	guarded("Categories", "/admin/materials/categories", GroupContent, domain.RequireSection(domain.SectionMaterials)),
	guarded("View Analytics", "/admin/analytics", GroupMarketing, domain.RequireSection(domain.SectionMarketing)),
	guarded("Manage Enrollments", "/admin/enrollments", GroupAdmissions, domain.RequireSection(domain.SectionAdmissions)),
	guarded("Counselling Requests", "/admin/counselling", GroupAdmissions, domain.RequireSection(domain.SectionAdmissions)),

	guarded("My Premium Resources", "/dashboard/my-courses", GroupStudent, domain.RequireStudent()),
	guarded("My Profile", "/dashboard/profile", GroupAccount, domain.RequireAuthenticated()),
}

// Navigation filters the static catalog for a session.
type Navigation struct{}

func NewNavigation() *Navigation {
	return &Navigation{}
}

// Entries returns the navigation visible to sess. Sessions that have not
// settled only see public entries.
func (n *Navigation) Entries(sess domain.Session) []NavEntry {
	out := make([]NavEntry, 0, len(navCatalog)+2)
	authenticated := sess.Settled() && sess.State == domain.StateAuthenticated && sess.Identity.Complete()

	for _, e := range navCatalog {
		if e.requirement == nil {
			out = append(out, e.NavEntry)
			continue
		}
		if authenticated && e.requirement.Allows(sess.Identity.Role) {
			out = append(out, e.NavEntry)
		}
	}

	if !sess.Settled() {
		return out
	}
	if !authenticated {
		return append(out,
			NavEntry{Label: "Sign In", Route: domain.RouteLogin, Group: GroupAccount},
			NavEntry{Label: "Register", Route: domain.RouteRegister, Group: GroupAccount},
		)
	}
	return append(out,
		NavEntry{Label: "Dashboard", Route: domain.DefaultHomeFor(sess.Identity.Role), Group: GroupAccount},
		NavEntry{Label: "Sign Out", Route: domain.RouteLogout, Group: GroupAccount, Method: "POST"},
	)
}
