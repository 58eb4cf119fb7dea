package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/hourly-forecast/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{"formatTemperature": formatTemperature}).
		ParseFS(templateFS, "templates/*.html"),
)

type forecastPage struct {
	Columns []string
	Rows    weather.Table
}

type errorPage struct {
	Message string
}

// formatTemperature prints the value as received, without padding or rounding.
func formatTemperature(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderHTML executes the named template into a buffer first so that a
// template error never leaves a half-written page.
func renderHTML(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
