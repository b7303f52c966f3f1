package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
)

func writeError(c echo.Context, logger *slog.Logger, status int, messages ...string) {
	err := c.JSON(status, er.Error{
		Messages: messages,
	})
	if err != nil {
		logger.Error(err.Error())
		c.Response().Status = http.StatusInternalServerError
	}
}

func errorHandler(logger *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}
		errLoggedMsg := err.Error() + " on " + c.Request().Method + " " + c.Request().URL.Path
		corbiError, ok := err.(*er.Error)
		if ok {
			if corbiError.Type == er.Forbidden || corbiError.Type == er.BadRequest {
				logger.Warn(errLoggedMsg)
			} else {
				logger.Error(errLoggedMsg)
			}
			finalErr, status := er.HTTPError(*corbiError)
			if err := c.JSON(status, finalErr); err != nil {
				logger.Error(err.Error())
				c.Response().Status = http.StatusInternalServerError
			}
			return
		}
		echoError, ok := err.(*echo.HTTPError)
		if !ok {
			logger.Error(errLoggedMsg)
			writeError(c, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		logger.Warn(errLoggedMsg)
		if jsonError, ok := echoError.Internal.(*json.UnmarshalTypeError); ok {
			writeError(c, logger, http.StatusBadRequest, fmt.Sprintf("invalid JSON payload, field %s is incorrect", jsonError.Field))
			return
		}
		switch echoError.Code {
		case http.StatusBadRequest:
			if strings.Contains(echoError.Error(), "Field validation") {
				writeError(c, logger, http.StatusBadRequest, strings.Split(fmt.Sprintf("%+v", echoError.Message), "\n")...)
				return
			}
			writeError(c, logger, http.StatusBadRequest, fmt.Sprintf("%v", echoError.Message))
		case http.StatusUnauthorized:
			writeError(c, logger, http.StatusUnauthorized, "unauthorized")
		case http.StatusMethodNotAllowed:
			writeError(c, logger, http.StatusMethodNotAllowed, "method not allowed")
		case http.StatusNotFound:
			writeError(c, logger, http.StatusNotFound, "not found")
		default:
			writeError(c, logger, http.StatusInternalServerError, "internal server error")
		}
	}
}
