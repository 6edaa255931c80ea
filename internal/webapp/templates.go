package webapp

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/adrianhv34-code/inventario-app/internal/db"
	"github.com/adrianhv34-code/inventario-app/internal/report"
)

//go:embed templates/*.html
var templatesFS embed.FS

// tagLabel maps a report weight tag to its on-screen Spanish label.
func tagLabel(t report.WeightTag) string {
	if t == report.WeightAveraged {
		return "(Prom)"
	}
	return "(Sin Pesos)"
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"fecha": func(ts int64) string {
			return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
		},
		"dec": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"peso": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"tagLabel": tagLabel,
	}
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// viewData is the superset of fields the page templates read. Only the
// fields a given screen uses are populated.
type viewData struct {
	Session *db.Session
	Flash   *flashMessage

	// login screen
	AdminPasswordSet bool

	// entry forms
	Suppliers []string
	Machines  []string
	Options   db.MaterialOptions

	// inventory report
	Report []report.Row

	// deletion panel
	GuestCounts    []db.InventoryCount
	AdminCounts    []db.InventoryCount
	MachineRecords []db.MachineRecord
}

// render executes a page template into a buffer so a template error can
// still produce a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data viewData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
