package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saa-academy/portal/internal/core/domain"
)

func TestDecide(t *testing.T) {
	identity := func(role domain.Role) *domain.Identity {
		return &domain.Identity{ID: "1", Role: role, Token: "t"}
	}

	cases := []struct {
		name string
		sess domain.Session
		req  domain.Requirement
		want Decision
	}{
		{"uninitialized", domain.Session{}, domain.RequireAuthenticated(), DecisionChecking},
		{"loading", domain.Session{State: domain.StateLoading, Identity: identity(domain.RoleSuperAdmin)}, domain.RequireAuthenticated(), DecisionChecking},
		{"anonymous", domain.Anonymous(), domain.RequireAuthenticated(), DecisionDeny},
		{"student authenticated", domain.Authenticated("s", identity(domain.RoleUser)), domain.RequireAuthenticated(), DecisionAllow},
		{"student admin page", domain.Authenticated("s", identity(domain.RoleUser)), domain.RequireAdministrative(), DecisionDeny},
		{"alias admin page", domain.Authenticated("s", identity(domain.RoleLegacyAdmin)), domain.RequireAdministrative(), DecisionAllow},
		{"unknown role admin page", domain.Authenticated("s", identity("Editor")), domain.RequireAdministrative(), DecisionDeny},
		{"content admin users", domain.Authenticated("s", identity(domain.RoleContentAdmin)), domain.RequireSection(domain.SectionUsers), DecisionDeny},
		{"content admin courses", domain.Authenticated("s", identity(domain.RoleContentAdmin)), domain.RequireSection(domain.SectionCourses), DecisionAllow},
		{"audience admin admissions", domain.Authenticated("s", identity(domain.RoleAudienceAdmin)), domain.RequireSection(domain.SectionAdmissions), DecisionAllow},
		{"incomplete identity", domain.Authenticated("s", &domain.Identity{ID: "1", Role: domain.RoleSuperAdmin}), domain.RequireAuthenticated(), DecisionDeny},
		{"zero requirement", domain.Authenticated("s", identity(domain.RoleSuperAdmin)), domain.Requirement{}, DecisionDeny},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.sess, tc.req))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "checking", DecisionChecking.String())
	assert.Equal(t, "allow", DecisionAllow.String())
	assert.Equal(t, "deny", DecisionDeny.String())
}
