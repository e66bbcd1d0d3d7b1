package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saa-academy/portal/internal/api/middleware"
	"github.com/saa-academy/portal/internal/core/service"
)

// PageHandler renders page descriptors: the page name, its title, the
// visitor's identity and the navigation they are allowed to see.
type PageHandler struct {
	nav *service.Navigation
}

func NewPageHandler(nav *service.Navigation) *PageHandler {
	return &PageHandler{nav: nav}
}

// Page returns a handler describing the page at the matched route.
func (h *PageHandler) Page(title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.describe(c, title))
	}
}

// Navigation returns the entries the current visitor may see.
//
// @Summary      Navigation entries
// @Tags         pages
// @Produce      json
// @Success      200  {array}  service.NavEntry
// @Router       /api/navigation [get]
func (h *PageHandler) Navigation(c echo.Context) error {
	return c.JSON(http.StatusOK, h.nav.Entries(middleware.SessionFrom(c)))
}

func (h *PageHandler) describe(c echo.Context, title string) pageResponse {
	sess := middleware.SessionFrom(c)
	if sess.Identity != nil {
		// Pages rendered for a signed-in visitor are private.
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	}
	page := c.Path()
	if page == "" {
		page = c.Request().URL.Path
	}
	return pageResponse{
		Page:       page,
		Title:      title,
		Identity:   toIdentityView(sess.Identity),
		Navigation: h.nav.Entries(sess),
	}
}
