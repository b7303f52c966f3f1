package handlers

import (
	"net/http"

	"github.com/appclacks/go-client"
	"github.com/labstack/echo/v4"
)

func NewResponse(messages ...string) client.Response {
	return client.Response{
		Messages: messages,
	}
}

func (b *Builder) Healthz(ec echo.Context) error {
	return ec.JSON(http.StatusOK, NewResponse("ok"))
}
