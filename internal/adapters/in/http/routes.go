package http

import (
	"net/http"

	"logistics/internal/adapters/in/http/api"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Register mounts the API, the websocket endpoint, /health and the
// swagger UI on e.
func Register(e *echo.Echo, s *Server) error {
	doc, err := api.GetSwagger()
	if err != nil {
		return err
	}
	validator, err := OpenAPIValidator(doc)
	if err != nil {
		return err
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/ws/tenants/:tenantId", s.Subscribe)

	apiGroup := e.Group("", validator)
	api.RegisterHandlers(apiGroup, s)
	return nil
}
