package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxActor returns the caller id injected by the Bearer middleware. A missing
// id means the token was structurally valid but carried no subject.
func ctxActor(c echo.Context) (string, error) {
	actorID, _ := c.Get("user_id").(string)
	if actorID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
	}
	return actorID, nil
}
