package webapp

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// PositiveFloat parses a decimal form value. Parse failures and
// non-positive values become 0, the canonical "absent" sentinel; no
// malformed or negative number ever reaches storage.
func PositiveFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

// requireField returns a field's first value, or an error when the form
// did not post the field at all. A posted-but-empty value passes; blank
// text is a user mistake the original system tolerated, while a missing
// key means a malformed client.
func requireField(form url.Values, name string) (string, error) {
	vs, ok := form[name]
	if !ok || len(vs) == 0 {
		return "", fmt.Errorf("missing form field %q", name)
	}
	return vs[0], nil
}

// loginForm is the parsed POST /login payload.
type loginForm struct {
	AdminRequested bool
	AdminPassword  string
	GuestName      string
}

func parseLoginForm(r *http.Request) (loginForm, error) {
	if err := r.ParseForm(); err != nil {
		return loginForm{}, err
	}
	return loginForm{
		AdminRequested: r.PostForm.Get("rol") == "Admin",
		AdminPassword:  r.PostForm.Get("clave"),
		GuestName:      strings.TrimSpace(r.PostForm.Get("nombre_invitado")),
	}, nil
}

// adminInventoryForm carries an admin reference-weight save.
type adminInventoryForm struct {
	Grade    string
	Diameter float64
	Supplier string
	Weights  [5]float64
	Exacts   [3]float64
}

func parseAdminInventoryForm(r *http.Request, suppliers []string) (adminInventoryForm, error) {
	var f adminInventoryForm
	if err := r.ParseForm(); err != nil {
		return f, err
	}
	grade, err := requireField(r.PostForm, "grado_acero")
	if err != nil {
		return f, err
	}
	diameter, err := requireField(r.PostForm, "diametro")
	if err != nil {
		return f, err
	}
	supplier, err := requireField(r.PostForm, "proveedor")
	if err != nil {
		return f, err
	}
	f.Grade = strings.TrimSpace(grade)
	if f.Grade == "" {
		return f, fmt.Errorf("grado_acero must not be blank")
	}
	f.Diameter = PositiveFloat(diameter)
	f.Supplier = supplier
	if !slices.Contains(suppliers, f.Supplier) {
		return f, fmt.Errorf("unknown supplier %q", f.Supplier)
	}
	for i := range f.Weights {
		f.Weights[i] = PositiveFloat(r.PostForm.Get(fmt.Sprintf("peso%d", i+1)))
	}
	for i := range f.Exacts {
		f.Exacts[i] = PositiveFloat(r.PostForm.Get(fmt.Sprintf("exacto%d", i+1)))
	}
	return f, nil
}

// guestInventoryForm carries a guest roll tally.
type guestInventoryForm struct {
	Grade    string
	Diameter float64
	Supplier string
	Rolls    int64
}

func parseGuestInventoryForm(r *http.Request, suppliers []string) (guestInventoryForm, error) {
	var f guestInventoryForm
	if err := r.ParseForm(); err != nil {
		return f, err
	}
	grade, err := requireField(r.PostForm, "grado_acero")
	if err != nil {
		return f, err
	}
	diameter, err := requireField(r.PostForm, "diametro")
	if err != nil {
		return f, err
	}
	supplier, err := requireField(r.PostForm, "proveedor")
	if err != nil {
		return f, err
	}
	rolls, err := requireField(r.PostForm, "cantidad_rollos")
	if err != nil {
		return f, err
	}
	f.Grade = grade
	f.Diameter = PositiveFloat(diameter)
	f.Supplier = supplier
	if !slices.Contains(suppliers, f.Supplier) {
		return f, fmt.Errorf("unknown supplier %q", f.Supplier)
	}
	f.Rolls = int64(PositiveFloat(rolls))
	return f, nil
}

// machineForm carries a guest machine-run submission. The machine name
// comes from a fixed list in the UI but is not constrained here beyond
// being present; the data layer accepts any string.
type machineForm struct {
	Machine  string
	Grade    string
	Diameter float64
	Weights  [5]float64
}

func parseMachineForm(r *http.Request) (machineForm, error) {
	var f machineForm
	if err := r.ParseForm(); err != nil {
		return f, err
	}
	machine, err := requireField(r.PostForm, "maquina")
	if err != nil {
		return f, err
	}
	grade, err := requireField(r.PostForm, "grado_acero")
	if err != nil {
		return f, err
	}
	diameter, err := requireField(r.PostForm, "diametro")
	if err != nil {
		return f, err
	}
	f.Machine = machine
	f.Grade = grade
	f.Diameter = PositiveFloat(diameter)
	for i := range f.Weights {
		f.Weights[i] = PositiveFloat(r.PostForm.Get(fmt.Sprintf("peso%d", i+1)))
	}
	return f, nil
}
