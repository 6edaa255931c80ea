package webapp

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestPositiveFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"-5", 0},
		{"0", 0},
		{"  3.5 ", 3.5},
		{"10", 10},
		{"0.01", 0.01},
	}
	for _, c := range cases {
		if got := PositiveFloat(c.in); got != c.want {
			t.Fatalf("PositiveFloat(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRequireField(t *testing.T) {
	form := url.Values{"grado_acero": {"G-40"}, "diametro": {""}}

	v, err := requireField(form, "grado_acero")
	if err != nil || v != "G-40" {
		t.Fatalf("got %q, %v", v, err)
	}
	// Posted but blank passes.
	if _, err := requireField(form, "diametro"); err != nil {
		t.Fatalf("blank field should pass: %v", err)
	}
	if _, err := requireField(form, "proveedor"); err == nil {
		t.Fatalf("missing field should error")
	}
}

func TestParseAdminInventoryForm(t *testing.T) {
	suppliers := []string{"GASA", "TERNIUM"}

	vals := url.Values{
		"grado_acero": {" G-40 "},
		"diametro":    {"6.35"},
		"proveedor":   {"GASA"},
		"peso1":       {"100"},
		"peso2":       {"abc"},
		"peso3":       {"-2"},
		"exacto1":     {"99.5"},
	}
	r := httptest.NewRequest("POST", "/guardar-inventario", strings.NewReader(vals.Encode()))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")

	f, err := parseAdminInventoryForm(r, suppliers)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Grade != "G-40" || f.Diameter != 6.35 || f.Supplier != "GASA" {
		t.Fatalf("unexpected material: %+v", f)
	}
	if f.Weights != [5]float64{100, 0, 0, 0, 0} {
		t.Fatalf("weights = %v", f.Weights)
	}
	if f.Exacts != [3]float64{99.5, 0, 0} {
		t.Fatalf("exacts = %v", f.Exacts)
	}
}

func TestParseAdminInventoryForm_Rejects(t *testing.T) {
	suppliers := []string{"GASA", "TERNIUM"}
	cases := []struct {
		name string
		vals url.Values
	}{
		{"missing grade", url.Values{"diametro": {"6"}, "proveedor": {"GASA"}}},
		{"blank grade", url.Values{"grado_acero": {"  "}, "diametro": {"6"}, "proveedor": {"GASA"}}},
		{"unknown supplier", url.Values{"grado_acero": {"G-40"}, "diametro": {"6"}, "proveedor": {"ACME"}}},
	}
	for _, c := range cases {
		r := httptest.NewRequest("POST", "/guardar-inventario", strings.NewReader(c.vals.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		if _, err := parseAdminInventoryForm(r, suppliers); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestParseGuestInventoryForm(t *testing.T) {
	suppliers := []string{"GASA", "TERNIUM"}

	vals := url.Values{
		"grado_acero":     {"G-40"},
		"diametro":        {"6.35"},
		"proveedor":       {"TERNIUM"},
		"cantidad_rollos": {"12"},
	}
	r := httptest.NewRequest("POST", "/guardar-inventario", strings.NewReader(vals.Encode()))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")

	f, err := parseGuestInventoryForm(r, suppliers)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Rolls != 12 {
		t.Fatalf("rolls = %d", f.Rolls)
	}

	// Missing cantidad_rollos is a malformed client.
	vals.Del("cantidad_rollos")
	r = httptest.NewRequest("POST", "/guardar-inventario", strings.NewReader(vals.Encode()))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")
	if _, err := parseGuestInventoryForm(r, suppliers); err == nil {
		t.Fatalf("expected error for missing roll count")
	}
}

func TestParseMachineForm(t *testing.T) {
	vals := url.Values{
		"maquina":     {"TR-03"},
		"grado_acero": {"G-60"},
		"diametro":    {"9.52"},
		"peso1":       {"55"},
		"peso5":       {"60"},
	}
	r := httptest.NewRequest("POST", "/guardar-maquina", strings.NewReader(vals.Encode()))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")

	f, err := parseMachineForm(r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Machine != "TR-03" || f.Grade != "G-60" || f.Diameter != 9.52 {
		t.Fatalf("unexpected form: %+v", f)
	}
	if f.Weights != [5]float64{55, 0, 0, 0, 60} {
		t.Fatalf("weights = %v", f.Weights)
	}
}

func TestIDFromPath(t *testing.T) {
	cases := []struct {
		path string
		id   int64
		ok   bool
	}{
		{"/borrar-conteo/7", 7, true},
		{"/borrar-conteo/", 0, false},
		{"/borrar-conteo/abc", 0, false},
		{"/borrar-conteo/-1", 0, false},
		{"/borrar-conteo/7/extra", 0, false},
	}
	for _, c := range cases {
		id, ok := idFromPath(c.path, "/borrar-conteo/")
		if id != c.id || ok != c.ok {
			t.Fatalf("idFromPath(%q) = %d, %v", c.path, id, ok)
		}
	}
}
