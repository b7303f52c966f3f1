package http

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func basicAuthValidator(config BasicAuth) middleware.BasicAuthValidator {
	return func(username string, password string, _ echo.Context) (bool, error) {
		validUser := subtle.ConstantTimeCompare([]byte(username), []byte(config.Username)) == 1
		validPassword := subtle.ConstantTimeCompare([]byte(password), []byte(config.Password)) == 1
		return validUser && validPassword, nil
	}
}
