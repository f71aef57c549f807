package sitepress

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// IsHTMXRequest reports whether the request was issued by an hx-* element.
func IsHTMXRequest(c echo.Context) bool {
	return strings.EqualFold(c.Request().Header.Get("HX-Request"), "true")
}

// RenderInvalid answers a form submission that failed validation. Partial
// swaps only happen on 2xx, so hx-driven requests get the re-rendered form
// with 200; plain form posts keep 422.
func RenderInvalid(c echo.Context, cmp templ.Component) error {
	if IsHTMXRequest(c) {
		return Render(c, cmp)
	}
	return RenderStatus(c, http.StatusUnprocessableEntity, cmp)
}
