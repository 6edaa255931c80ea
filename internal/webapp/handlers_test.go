// End-to-end handler tests run the full middleware chain against a
// temporary SQLite database.
package webapp

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/adrianhv34-code/inventario-app/internal/auth"
	"github.com/adrianhv34-code/inventario-app/internal/config"
	"github.com/adrianhv34-code/inventario-app/internal/db"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()
	d, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	s, err := New(d, testLogger(), config.DefaultSuppliers, config.DefaultMachines)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, d
}

func postForm(h http.Handler, path string, vals url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", path, strings.NewReader(vals.Encode()))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// loginAs performs POST /login and returns the session cookie.
func loginAs(t *testing.T, h http.Handler, vals url.Values) *http.Cookie {
	t.Helper()
	w := postForm(h, "/login", vals)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d body=%s", w.Code, strings.TrimSpace(w.Body.String()))
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func loginAdmin(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	return loginAs(t, h, url.Values{"rol": {"Admin"}, "clave": {""}})
}

func loginGuest(t *testing.T, h http.Handler, name string) *http.Cookie {
	t.Helper()
	return loginAs(t, h, url.Values{"rol": {"Invitado"}, "nombre_invitado": {name}})
}

func flashFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookieName && c.Value != "" {
			raw, err := base64.RawURLEncoding.DecodeString(c.Value)
			if err != nil {
				t.Fatalf("decode flash: %v", err)
			}
			return string(raw)
		}
	}
	return ""
}

func TestIndex_ShowsLoginAndClearsSession(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()

	cookie := loginGuest(t, h, "Pedro")

	w := get(h, "/", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	// The server-side session is gone.
	_, ok, err := d.GetSession(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if ok {
		t.Fatalf("session should be deleted after visiting index")
	}
}

func TestIndex_UnknownPath404(t *testing.T) {
	s, _ := newTestServer(t)
	w := get(s.Handler(), "/no-such-page")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLogin_GuestNeedsName(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	w := postForm(h, "/login", url.Values{"rol": {"Invitado"}, "nombre_invitado": {"   "}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status=%d", w.Code)
	}
	if loc := w.Result().Header.Get("location"); loc != "/" {
		t.Fatalf("location=%q, want /", loc)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			t.Fatalf("blank guest name must not create a session")
		}
	}
}

func TestLogin_AdminPassword(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()
	ctx := context.Background()

	hash, err := auth.HashPassword("secreto", auth.DefaultParams())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := d.SetAdminPasswordHash(ctx, hash); err != nil {
		t.Fatalf("set hash: %v", err)
	}

	// Wrong password bounces back with a danger flash.
	w := postForm(h, "/login", url.Values{"rol": {"Admin"}, "clave": {"nope"}})
	if w.Code != http.StatusSeeOther || w.Result().Header.Get("location") != "/" {
		t.Fatalf("status=%d location=%q", w.Code, w.Result().Header.Get("location"))
	}
	if f := flashFrom(t, w); f != "danger|Clave de administrador incorrecta." {
		t.Fatalf("flash=%q", f)
	}

	// Correct password logs in.
	cookie := loginAs(t, h, url.Values{"rol": {"Admin"}, "clave": {"secreto"}})
	sess, ok, err := d.GetSession(ctx, cookie.Value)
	if err != nil || !ok {
		t.Fatalf("session lookup: ok=%v err=%v", ok, err)
	}
	if sess.Role != db.RoleAdmin {
		t.Fatalf("role=%q", sess.Role)
	}
}

func TestLogin_AdminWithoutConfiguredPassword(t *testing.T) {
	s, _ := newTestServer(t)
	cookie := loginAdmin(t, s.Handler())
	if cookie.Value == "" {
		t.Fatalf("expected session")
	}
}

func TestProtectedRoutes_RedirectAnonymous(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	for _, path := range []string{"/ingresar", "/reporte", "/panel-borrado", "/maquinas", "/reporte-maquinas"} {
		w := get(h, path)
		if w.Code != http.StatusFound {
			t.Fatalf("%s: status=%d", path, w.Code)
		}
		if loc := w.Result().Header.Get("location"); loc != "/" {
			t.Fatalf("%s: location=%q", path, loc)
		}
	}
}

func TestDeletionPanel_GuestDenied(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	cookie := loginGuest(t, h, "Maria")

	w := get(h, "/panel-borrado", cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("status=%d", w.Code)
	}
	if loc := w.Result().Header.Get("location"); loc != "/ingresar" {
		t.Fatalf("location=%q", loc)
	}
	if f := flashFrom(t, w); f != "danger|Acceso denegado." {
		t.Fatalf("flash=%q", f)
	}
}

func TestMachineScreens_AdminDenied(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	cookie := loginAdmin(t, h)

	for _, path := range []string{"/maquinas", "/reporte-maquinas"} {
		w := get(h, path, cookie)
		if w.Code != http.StatusFound {
			t.Fatalf("%s: status=%d", path, w.Code)
		}
		if loc := w.Result().Header.Get("location"); loc != "/" {
			t.Fatalf("%s: location=%q", path, loc)
		}
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	cookie := loginGuest(t, h, "Pedro")

	w := get(h, "/logout", cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("logout status=%d", w.Code)
	}

	// The old token no longer opens protected screens.
	w = get(h, "/ingresar", cookie)
	if w.Code != http.StatusFound || w.Result().Header.Get("location") != "/" {
		t.Fatalf("status=%d location=%q", w.Code, w.Result().Header.Get("location"))
	}
}

func TestSaveInventory_GuestAppends(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()
	cookie := loginGuest(t, h, "Pedro")

	vals := url.Values{
		"grado_acero":     {"G-40"},
		"diametro":        {"6.35"},
		"proveedor":       {"GASA"},
		"cantidad_rollos": {"12"},
	}
	w := postForm(h, "/guardar-inventario", vals, cookie)
	if w.Code != http.StatusSeeOther || w.Result().Header.Get("location") != "/ingresar" {
		t.Fatalf("status=%d location=%q", w.Code, w.Result().Header.Get("location"))
	}
	if f := flashFrom(t, w); f != "success|Conteo de rollos guardado!" {
		t.Fatalf("flash=%q", f)
	}

	counts, err := d.ListInventoryCountsByRole(context.Background(), db.RoleGuest)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(counts) != 1 || counts[0].Username != "Pedro" || counts[0].RollCount != 12 {
		t.Fatalf("counts=%+v", counts)
	}
}

func TestSaveInventory_AdminUpsertFlash(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()
	cookie := loginAdmin(t, h)

	vals := url.Values{
		"grado_acero": {"G-40"},
		"diametro":    {"6.35"},
		"proveedor":   {"GASA"},
		"peso1":       {"100"},
	}
	w := postForm(h, "/guardar-inventario", vals, cookie)
	if f := flashFrom(t, w); f != "success|Pesos CREADOS exitosamente!" {
		t.Fatalf("first save flash=%q", f)
	}

	vals.Set("peso1", "110")
	w = postForm(h, "/guardar-inventario", vals, cookie)
	if f := flashFrom(t, w); f != "success|Pesos ACTUALIZADOS exitosamente!" {
		t.Fatalf("second save flash=%q", f)
	}

	counts, err := d.ListInventoryCountsByRole(context.Background(), db.RoleAdmin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(counts) != 1 || counts[0].Weights[0] != 110 {
		t.Fatalf("counts=%+v", counts)
	}
}

func TestSaveInventory_MissingFieldIs400(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	cookie := loginGuest(t, h, "Pedro")

	w := postForm(h, "/guardar-inventario", url.Values{"grado_acero": {"G-40"}}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestDeleteCount_AbsentIs404(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	cookie := loginAdmin(t, h)

	w := postForm(h, "/borrar-conteo/999", url.Values{}, cookie)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestDeleteCount_RemovesRow(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()
	ctx := context.Background()

	id, err := d.InsertGuestCount(ctx, "Pedro", "G-40", 6.35, "GASA", 3)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	cookie := loginAdmin(t, h)
	w := postForm(h, "/borrar-conteo/"+itoa(id), url.Values{}, cookie)
	if w.Code != http.StatusSeeOther || w.Result().Header.Get("location") != "/panel-borrado" {
		t.Fatalf("status=%d location=%q", w.Code, w.Result().Header.Get("location"))
	}

	counts, err := d.ListInventoryCounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("row should be gone, got %+v", counts)
	}
}

func TestSaveMachine_GuestFlow(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()
	cookie := loginGuest(t, h, "Maria")

	vals := url.Values{
		"maquina":     {"TR-03"},
		"grado_acero": {"G-60"},
		"diametro":    {"9.52"},
		"peso1":       {"55"},
	}
	w := postForm(h, "/guardar-maquina", vals, cookie)
	if w.Code != http.StatusSeeOther || w.Result().Header.Get("location") != "/reporte-maquinas" {
		t.Fatalf("status=%d location=%q", w.Code, w.Result().Header.Get("location"))
	}

	recs, err := d.ListMachineRecords(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].Machine != "TR-03" || recs[0].Username != "Maria" {
		t.Fatalf("recs=%+v", recs)
	}
}

func TestReportExports(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()
	ctx := context.Background()

	if _, err := d.UpsertAdminCount(ctx, "G-40", 6.35, "GASA", [5]float64{100, 110, 0, 0, 0}, [3]float64{}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := d.InsertGuestCount(ctx, "Pedro", "G-40", 6.35, "GASA", 5); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cookie := loginGuest(t, h, "Pedro")

	w := get(h, "/reporte/pdf", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("pdf status=%d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("body is not a PDF")
	}
	if cd := w.Result().Header.Get("content-disposition"); !strings.Contains(cd, "reporte_inventario.pdf") {
		t.Fatalf("content-disposition=%q", cd)
	}

	w = get(h, "/reporte/xlsx", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("xlsx status=%d", w.Code)
	}
	if ct := w.Result().Header.Get("content-type"); ct != xlsxContentType {
		t.Fatalf("content-type=%q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatalf("empty xlsx body")
	}
}

func TestMachineReportExports(t *testing.T) {
	s, d := newTestServer(t)
	h := s.Handler()
	ctx := context.Background()

	if _, err := d.InsertMachineRecord(ctx, "Maria", "ESTRIBO", "G-60", 9.52, [5]float64{55, 0, 0, 0, 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cookie := loginGuest(t, h, "Maria")

	w := get(h, "/reporte-maquinas/pdf", cookie)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("pdf status=%d", w.Code)
	}
	w = get(h, "/reporte-maquinas/xlsx", cookie)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("xlsx status=%d len=%d", w.Code, w.Body.Len())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	w := get(h, "/health")
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health status=%d body=%q", w.Code, w.Body.String())
	}

	get(h, "/health")
	w = get(h, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics missing request counter")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)
	w := get(s.Handler(), "/health")
	if got := w.Result().Header.Get("x-content-type-options"); got != "nosniff" {
		t.Fatalf("x-content-type-options=%q", got)
	}
	if got := w.Result().Header.Get("x-frame-options"); got != "DENY" {
		t.Fatalf("x-frame-options=%q", got)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
