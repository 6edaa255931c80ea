// Package report builds the per-material inventory summary: guest roll
// totals combined with the admin reference weights for each distinct
// (grade, diameter, supplier) material.
package report

import (
	"sort"

	"github.com/adrianhv34-code/inventario-app/internal/db"
)

// WeightTag classifies how a row's display weight was derived.
type WeightTag string

const (
	// WeightAveraged marks a display weight computed as the mean of the
	// admin's strictly-positive weight samples.
	WeightAveraged WeightTag = "averaged"
	// WeightNoData marks a material with no usable weight samples.
	WeightNoData WeightTag = "no data"
)

// Row is one summary line per distinct material.
type Row struct {
	Grade        string
	Diameter     float64
	Supplier     string
	TotalRolls   int64
	AdminRecords []db.InventoryCount
	Weight       float64
	Tag          WeightTag
}

type materialKey struct {
	grade    string
	diameter float64
	supplier string
}

// Build aggregates all inventory rows into one summary row per material.
// It is recomputed in full on every report request; rows are ordered by
// grade, then diameter, then supplier.
func Build(counts []db.InventoryCount) []Row {
	totals := map[materialKey]int64{}
	admins := map[materialKey][]db.InventoryCount{}
	var keys []materialKey
	seen := map[materialKey]bool{}

	for _, c := range counts {
		k := materialKey{c.Grade, c.Diameter, c.Supplier}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
		switch c.Role {
		case db.RoleGuest:
			totals[k] += c.RollCount
		case db.RoleAdmin:
			// The store keeps at most one admin row per material, but the
			// aggregation does not depend on that.
			admins[k] = append(admins[k], c)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.grade != b.grade {
			return a.grade < b.grade
		}
		if a.diameter != b.diameter {
			return a.diameter < b.diameter
		}
		return a.supplier < b.supplier
	})

	out := make([]Row, 0, len(keys))
	for _, k := range keys {
		weight, tag := displayWeight(admins[k])
		out = append(out, Row{
			Grade:        k.grade,
			Diameter:     k.diameter,
			Supplier:     k.supplier,
			TotalRolls:   totals[k],
			AdminRecords: admins[k],
			Weight:       weight,
			Tag:          tag,
		})
	}
	return out
}

// displayWeight averages the strictly-positive weight samples across the
// matching admin rows. Zero usable samples yields weight 0, tagged no-data.
func displayWeight(records []db.InventoryCount) (float64, WeightTag) {
	var sum float64
	var n int
	for _, r := range records {
		for _, w := range r.Weights {
			if w > 0 {
				sum += w
				n++
			}
		}
	}
	if n == 0 {
		return 0, WeightNoData
	}
	return sum / float64(n), WeightAveraged
}
