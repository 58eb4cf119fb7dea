package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/hourly-forecast/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/", func(c *fiber.Ctx) error {
		table, err := service.HourlyTable(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}

		return renderHTML(c, fiber.StatusOK, "forecast.html", forecastPage{
			Columns: weather.Columns(),
			Rows:    table,
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"service": "hourly-forecast",
		}
		if probe := service.LastProbe(); !probe.CheckedAt.IsZero() {
			resp["upstream"] = probe
		}
		return c.JSON(resp)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/forecast/hourly", func(c *fiber.Ctx) error {
		var q hourlyQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		table, err := service.HourlyTable(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}
		if q.Limit != nil && len(table) > *q.Limit {
			table = table[:*q.Limit]
		}

		return c.JSON(fiber.Map{
			"columns": weather.Columns(),
			"rows":    table,
		})
	})
}

// hourlyQuery holds query parameters for the hourly forecast endpoint.
type hourlyQuery struct {
	Limit *int `validate:"omitempty,min=1,max=24"`
}

func (h *hourlyQuery) bind(c *fiber.Ctx) error {
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		h.Limit = &n
	}
	return nil
}

// toHTTPError maps forecast failures onto gateway status codes; all of them
// are the upstream's fault from the client's point of view.
func toHTTPError(err error) error {
	var (
		te *weather.TransportError
		pe *weather.ParseError
		se *weather.StructureError
	)
	switch {
	case errors.As(err, &te) && te.Timeout():
		return fiber.NewError(fiber.StatusGatewayTimeout, "forecast source timed out")
	case weather.IsUpstream(err):
		return fiber.NewError(fiber.StatusBadGateway, "forecast source unavailable")
	case errors.As(err, &pe), errors.As(err, &se):
		return fiber.NewError(fiber.StatusBadGateway, "forecast source returned an unreadable payload")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build forecast")
	}
}

// ErrorHandler is the centralized Fiber error handler. Browsers get an HTML
// page, everything else gets JSON. Only *fiber.Error messages reach the
// client; other errors are logged and answered with the status text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := utils.StatusMessage(code)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.WithField("path", c.Path()).Errorf("request failed: %v", err)
	}

	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
		if rerr := renderHTML(c, code, "error.html", errorPage{Message: message}); rerr == nil {
			return nil
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
