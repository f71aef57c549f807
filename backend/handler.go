package backend

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// TokenHeader carries the shared backend token when one is configured.
const TokenHeader = "X-Backend-Token"

// maxEnvelopeBytes bounds the request body; articles carry full HTML.
const maxEnvelopeBytes = 2 << 20

// Handler serves Dispatch over HTTP. Every response is a JSON Result; only
// a missing or wrong token is answered with a non-200 status.
func Handler(d *Dispatcher, token string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token != "" && subtle.ConstantTimeCompare([]byte(c.Request().Header.Get(TokenHeader)), []byte(token)) != 1 {
			return c.JSON(http.StatusUnauthorized, Failure("unauthorized"))
		}
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxEnvelopeBytes)
		var env Envelope
		if err := c.Bind(&env); err != nil {
			return c.JSON(http.StatusOK, Failure("invalid request"))
		}
		return c.JSON(http.StatusOK, d.Dispatch(c.Request().Context(), env))
	}
}
