package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var viewsFS embed.FS

var indexTmpl *template.Template

// loadTemplatesFromFS parses every *.html under dir. Tests use it to feed
// broken filesystems.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	indexTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup; if it
// returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Route is one line in the index page listing.
type Route struct {
	Path        string
	Description string
}

type IndexData struct {
	Title  string
	Routes []Route
}

// DefaultIndex lists the API routes served under /api/v1.0.
func DefaultIndex() IndexData {
	return IndexData{
		Title: "Hawaii Climate API",
		Routes: []Route{
			{Path: "/api/v1.0/precipitation", Description: "Every measurement's date and precipitation"},
			{Path: "/api/v1.0/stations", Description: "Station names and ids"},
			{Path: "/api/v1.0/tobs", Description: "Trailing year of temperature observations for the busiest station"},
			{Path: "/api/v1.0/<start>", Description: "Per-station min, max and average temperature from start (YYYY-MM-DD)"},
			{Path: "/api/v1.0/<start>/<end>", Description: "Per-station min, max and average temperature between start and end inclusive"},
		},
	}
}

func RenderIndex(w io.Writer, data IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
