package webapp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/adrianhv34-code/inventario-app/internal/auth"
	"github.com/adrianhv34-code/inventario-app/internal/db"
	"github.com/adrianhv34-code/inventario-app/internal/report"
)

// handleIndex clears any session and shows the login screen.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.clearSession(w, r)

	_, hasPassword, err := s.DB.GetAdminPasswordHash(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "index.html", viewData{
		Flash:            popFlash(w, r),
		AdminPasswordSet: hasPassword,
	})
}

// handleLogin sets the session role from the posted form: rol=Admin
// (verifying the shared password when one is configured) or a non-empty
// guest display name. Anything else bounces back to the login screen.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ok, wait := s.loginLimiter.Allow(clientIP(r)); !ok {
		w.Header().Set("retry-after", retryAfterSeconds(wait))
		http.Error(w, "too many login attempts", http.StatusTooManyRequests)
		return
	}

	f, err := parseLoginForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var role, username string
	switch {
	case f.AdminRequested:
		hash, hasPassword, err := s.DB.GetAdminPasswordHash(r.Context())
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if hasPassword {
			ok, err := auth.VerifyPassword(f.AdminPassword, hash)
			if err != nil || !ok {
				setFlash(w, flashDanger, "Clave de administrador incorrecta.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
		}
		role, username = db.RoleAdmin, "Admin"
	case f.GuestName != "":
		role, username = db.RoleGuest, f.GuestName
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	tok, err := auth.NewToken(32)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if err := s.DB.CreateSession(r.Context(), tok, role, username, sessionTTL); err != nil {
		s.serverError(w, r, err)
		return
	}
	setSessionCookie(w, tok)
	http.Redirect(w, r, "/ingresar", http.StatusSeeOther)
}

// handleLogout clears all session state unconditionally.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleEntryForm shows the inventory-entry screen. Guests pick from the
// materials the admin has registered; the supplier list is fixed.
func (s *Server) handleEntryForm(w http.ResponseWriter, r *http.Request) {
	opts, err := s.DB.AdminMaterialOptions(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "ingresar.html", viewData{
		Session:   sessionFrom(r.Context()),
		Flash:     popFlash(w, r),
		Suppliers: s.Suppliers,
		Options:   opts,
	})
}

// handleSaveInventory branches on the session role: admins update or
// create the single reference-weight row for the material, guests always
// append a new tally row.
func (s *Server) handleSaveInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r.Context())

	if isAdmin(sess) {
		f, err := parseAdminInventoryForm(r, s.Suppliers)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		created, err := s.DB.UpsertAdminCount(r.Context(), f.Grade, f.Diameter, f.Supplier, f.Weights, f.Exacts)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if created {
			setFlash(w, flashSuccess, "Pesos CREADOS exitosamente!")
		} else {
			setFlash(w, flashSuccess, "Pesos ACTUALIZADOS exitosamente!")
		}
	} else {
		f, err := parseGuestInventoryForm(r, s.Suppliers)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if _, err := s.DB.InsertGuestCount(r.Context(), sess.Username, f.Grade, f.Diameter, f.Supplier, f.Rolls); err != nil {
			s.serverError(w, r, err)
			return
		}
		setFlash(w, flashSuccess, "Conteo de rollos guardado!")
	}

	http.Redirect(w, r, "/ingresar", http.StatusSeeOther)
}

func (s *Server) buildInventoryReport(r *http.Request) ([]report.Row, error) {
	counts, err := s.DB.ListInventoryCounts(r.Context())
	if err != nil {
		return nil, err
	}
	return report.Build(counts), nil
}

// handleInventoryReport renders the per-material summary.
func (s *Server) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.buildInventoryReport(r)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "reporte.html", viewData{
		Session: sessionFrom(r.Context()),
		Flash:   popFlash(w, r),
		Report:  rows,
	})
}

// handleInventoryReportPDF streams the summary as a PDF attachment.
func (s *Server) handleInventoryReportPDF(w http.ResponseWriter, r *http.Request) {
	rows, err := s.buildInventoryReport(r)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	b, err := inventoryReportPDF(rows)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeAttachment(w, "reporte_inventario.pdf", "application/pdf", b)
}

// handleInventoryReportXLSX streams the summary as a spreadsheet.
func (s *Server) handleInventoryReportXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := s.buildInventoryReport(r)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	b, err := inventoryReportXLSX(rows)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeAttachment(w, "reporte_inventario.xlsx", xlsxContentType, b)
}

// handleDeletionPanel lists every row of both entity types, newest
// first, with per-row delete actions.
func (s *Server) handleDeletionPanel(w http.ResponseWriter, r *http.Request) {
	guestCounts, err := s.DB.ListInventoryCountsByRole(r.Context(), db.RoleGuest)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	adminCounts, err := s.DB.ListInventoryCountsByRole(r.Context(), db.RoleAdmin)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	machines, err := s.DB.ListMachineRecords(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "panel_borrado.html", viewData{
		Session:        sessionFrom(r.Context()),
		Flash:          popFlash(w, r),
		GuestCounts:    guestCounts,
		AdminCounts:    adminCounts,
		MachineRecords: machines,
	})
}

// idFromPath parses the trailing numeric id of a delete route.
func idFromPath(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleDeleteCount deletes one inventory row by id; 404 when absent.
func (s *Server) handleDeleteCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := idFromPath(r.URL.Path, "/borrar-conteo/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.DB.DeleteInventoryCount(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}
	setFlash(w, flashSuccess, "Registro de inventario borrado.")
	http.Redirect(w, r, "/panel-borrado", http.StatusSeeOther)
}

// handleDeleteMachine deletes one machine record by id; 404 when absent.
func (s *Server) handleDeleteMachine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := idFromPath(r.URL.Path, "/borrar-maquina/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.DB.DeleteMachineRecord(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}
	setFlash(w, flashSuccess, "Registro de máquina borrado.")
	http.Redirect(w, r, "/panel-borrado", http.StatusSeeOther)
}

// handleMachineForm shows the machine-entry screen with the fixed
// machine list and the admin-sourced material options.
func (s *Server) handleMachineForm(w http.ResponseWriter, r *http.Request) {
	opts, err := s.DB.AdminMaterialOptions(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "maquinas.html", viewData{
		Session:  sessionFrom(r.Context()),
		Flash:    popFlash(w, r),
		Machines: s.Machines,
		Options:  opts,
	})
}

// handleSaveMachine appends a machine record for the logged-in guest.
func (s *Server) handleSaveMachine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f, err := parseMachineForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r.Context())
	if _, err := s.DB.InsertMachineRecord(r.Context(), sess.Username, f.Machine, f.Grade, f.Diameter, f.Weights); err != nil {
		s.serverError(w, r, err)
		return
	}
	setFlash(w, flashSuccess, "¡Registro de máquina guardado!")
	http.Redirect(w, r, "/reporte-maquinas", http.StatusSeeOther)
}

// handleMachineReport lists all machine records, newest first.
func (s *Server) handleMachineReport(w http.ResponseWriter, r *http.Request) {
	recs, err := s.DB.ListMachineRecords(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "reporte_maquinas.html", viewData{
		Session:        sessionFrom(r.Context()),
		Flash:          popFlash(w, r),
		MachineRecords: recs,
	})
}

// handleMachineReportPDF streams the machine report as a PDF attachment.
func (s *Server) handleMachineReportPDF(w http.ResponseWriter, r *http.Request) {
	recs, err := s.DB.ListMachineRecords(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	b, err := machineReportPDF(recs)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeAttachment(w, "reporte_maquinas.pdf", "application/pdf", b)
}

// handleMachineReportXLSX streams the machine report as a spreadsheet.
func (s *Server) handleMachineReportXLSX(w http.ResponseWriter, r *http.Request) {
	recs, err := s.DB.ListMachineRecords(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	b, err := machineReportXLSX(recs)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeAttachment(w, "reporte_maquinas.xlsx", xlsxContentType, b)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("content-type", contentType)
	w.Header().Set("content-disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(body)
}

// serverError logs the failure and returns the generic error page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Logger.Error("handler error", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "server error", http.StatusInternalServerError)
}
