package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrorHandler renders errors as {"error": "..."} like the handlers do.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		log.Error().Err(err).Msg("write error response")
	}
}
