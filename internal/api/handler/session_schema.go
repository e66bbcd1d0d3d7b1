package handler

import (
	"github.com/saa-academy/portal/internal/core/domain"
	"github.com/saa-academy/portal/internal/core/service"
)

type loginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerRequest struct {
	Username        string `json:"username"         form:"username"         validate:"required,max=64"`
	Email           string `json:"email"            form:"email"            validate:"required,email"`
	Password        string `json:"password"         form:"password"         validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"omitempty,eqfield=Password"`
}

// identityView is the identity as shown to the browser. The bearer token
// stays on the server.
type identityView struct {
	ID             string           `json:"id"`
	Username       string           `json:"username"`
	Email          string           `json:"email"`
	Role           domain.Role      `json:"role"`
	Administrative bool             `json:"administrative"`
	Home           string           `json:"home"`
	Sections       []domain.Section `json:"sections"`
}

type sessionResponse struct {
	State    string        `json:"state"`
	Identity *identityView `json:"identity,omitempty"`
}

type authResponse struct {
	Identity *identityView `json:"identity"`
	Redirect string        `json:"redirect"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type pageResponse struct {
	Page       string             `json:"page"`
	Title      string             `json:"title"`
	Identity   *identityView      `json:"identity,omitempty"`
	Navigation []service.NavEntry `json:"navigation"`
	// Pending is the destination the login and register pages will return to.
	Pending string `json:"pending,omitempty"`
}

func toIdentityView(identity *domain.Identity) *identityView {
	if !identity.Complete() {
		return nil
	}
	return &identityView{
		ID:             identity.ID,
		Username:       identity.Username,
		Email:          identity.Email,
		Role:           identity.Role,
		Administrative: domain.IsAdministrative(identity.Role),
		Home:           domain.DefaultHomeFor(identity.Role),
		Sections:       domain.VisibleSections(identity.Role),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
