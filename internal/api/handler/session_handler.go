package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saa-academy/portal/internal/api/middleware"
	"github.com/saa-academy/portal/internal/core/domain"
	"github.com/saa-academy/portal/internal/core/ports"
	"github.com/saa-academy/portal/internal/core/service"
	"github.com/saa-academy/portal/pkg/logger"
)

// SessionHandler serves login, registration, logout and the session read.
type SessionHandler struct {
	sessions  ports.SessionService
	redirects *service.RedirectCoordinator
	cookie    *middleware.SessionCookie
	pages     *PageHandler
	audit     ports.AuditRecorder
}

func NewSessionHandler(
	sessions ports.SessionService,
	redirects *service.RedirectCoordinator,
	cookie *middleware.SessionCookie,
	pages *PageHandler,
	audit ports.AuditRecorder,
) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		redirects: redirects,
		cookie:    cookie,
		pages:     pages,
		audit:     audit,
	}
}

// LoginPage handles GET /login and GET /register. Signed-in visitors are sent
// on to their pending destination or their home.
func (h *SessionHandler) LoginPage(title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := middleware.SessionFrom(c)
		if sess.State == domain.StateAuthenticated {
			return c.Redirect(http.StatusFound, h.redirects.ReplayOrDefault(c.QueryParams(), sess.Identity))
		}

		resp := h.pages.describe(c, title)
		if dest, ok := h.redirects.Pending(c.QueryParams()); ok {
			resp.Pending = dest
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// Login signs a visitor in.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        redirect  query     string        false  "Pending destination"
// @Param        body      body      loginRequest  true   "Credentials"
// @Success      200       {object}  authResponse
// @Success      303
// @Failure      401       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Router       /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	current := middleware.SessionFrom(c)
	sess, err := h.sessions.Login(c.Request().Context(), current.ID, req.Email, req.Password)
	if err != nil {
		h.recordFailure(c, domain.EventLoginFailed, current.ID, req.Email, err)
		return err
	}
	return h.signedIn(c, domain.EventLoginSucceeded, sess)
}

// Register creates an account and signs it in.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        redirect  query     string           false  "Pending destination"
// @Param        body      body      registerRequest  true   "Account details"
// @Success      200       {object}  authResponse
// @Success      303
// @Failure      422       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Router       /register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	current := middleware.SessionFrom(c)
	sess, err := h.sessions.Register(c.Request().Context(), current.ID, req.Username, req.Email, req.Password)
	if err != nil {
		h.recordFailure(c, domain.EventRegistrationFailed, current.ID, req.Email, err)
		return err
	}
	return h.signedIn(c, domain.EventRegistered, sess)
}

// Logout signs the visitor out and returns them to the public site.
//
// @Summary      Sign out
// @Tags         session
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Success      303
// @Router       /logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	current := middleware.SessionFrom(c)
	sess := h.sessions.Logout(c.Request().Context(), current.ID)
	h.cookie.Clear(c)
	middleware.SetSession(c, sess)

	if current.State == domain.StateAuthenticated {
		h.audit.Record(domain.AuthEvent{
			Type:       domain.EventLoggedOut,
			SessionID:  current.ID,
			UserID:     current.Identity.ID,
			Role:       current.Identity.Role,
			RemoteAddr: c.RealIP(),
		})
	}
	return h.respondRedirect(c, domain.RouteHome, nil)
}

// Current reports the session state: authenticated with an identity, anonymous,
// or not yet loaded.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, sessionResponse{
		State:    sess.State.String(),
		Identity: toIdentityView(sess.Identity),
	})
}

func (h *SessionHandler) signedIn(c echo.Context, evt domain.AuthEventType, sess domain.Session) error {
	if err := h.cookie.Write(c, sess.ID); err != nil {
		h.sessions.Logout(c.Request().Context(), sess.ID)
		return err
	}
	middleware.SetSession(c, sess)

	h.audit.Record(domain.AuthEvent{
		Type:       evt,
		SessionID:  sess.ID,
		UserID:     sess.Identity.ID,
		Email:      sess.Identity.Email,
		Role:       sess.Identity.Role,
		RemoteAddr: c.RealIP(),
	})
	logger.FromEcho(c).Info().Str("user_id", sess.Identity.ID).Msg(string(evt))

	dest := h.redirects.ReplayOrDefault(c.QueryParams(), sess.Identity)
	return h.respondRedirect(c, dest, toIdentityView(sess.Identity))
}

// respondRedirect answers JSON clients with the destination and form posts
// with a 303.
func (h *SessionHandler) respondRedirect(c echo.Context, dest string, identity *identityView) error {
	if wantsJSON(c) {
		if identity == nil {
			return c.JSON(http.StatusOK, redirectResponse{Redirect: dest})
		}
		return c.JSON(http.StatusOK, authResponse{Identity: identity, Redirect: dest})
	}
	return c.Redirect(http.StatusSeeOther, dest)
}

func (h *SessionHandler) recordFailure(c echo.Context, evt domain.AuthEventType, sessionID, email string, err error) {
	reason := "rejected"
	if errors.Is(err, domain.ErrBackendUnavailable) || errors.Is(err, domain.ErrBackendFailure) {
		reason = "backend"
	}
	h.audit.Record(domain.AuthEvent{
		Type:       evt,
		SessionID:  sessionID,
		Email:      email,
		RemoteAddr: c.RealIP(),
		Reason:     reason,
	})
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
