// Package db contains database query helpers for the inventario store.
package db

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"
)

// nowUnix returns the current Unix timestamp in seconds.
func nowUnix() int64 { return time.Now().Unix() }

const inventoryColumns = `id, role, username, grade, diameter, supplier, roll_count,
weight1, weight2, weight3, weight4, weight5, exact1, exact2, exact3, created_at, updated_at`

func scanInventoryCount(row interface{ Scan(...any) error }) (InventoryCount, error) {
	var c InventoryCount
	err := row.Scan(
		&c.ID, &c.Role, &c.Username, &c.Grade, &c.Diameter, &c.Supplier, &c.RollCount,
		&c.Weights[0], &c.Weights[1], &c.Weights[2], &c.Weights[3], &c.Weights[4],
		&c.Exacts[0], &c.Exacts[1], &c.Exacts[2], &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// UpsertAdminCount creates or replaces the single admin reference-weight
// row for a (grade, diameter, supplier) material. The partial unique
// index enforces the one-row invariant; the upsert makes the write a
// single statement so there is no check-then-insert race. The returned
// flag reports whether a new row was created (it only affects the
// user-facing notice).
func (d *DB) UpsertAdminCount(ctx context.Context, grade string, diameter float64, supplier string, weights [5]float64, exacts [3]float64) (bool, error) {
	if grade == "" || supplier == "" {
		return false, errors.New("grade and supplier are required")
	}
	created := false
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
SELECT id FROM inventory_counts WHERE role=? AND grade=? AND diameter=? AND supplier=?
`, RoleAdmin, grade, diameter, supplier).Scan(&id)
		if err == sql.ErrNoRows {
			created = true
		} else if err != nil {
			return err
		}

		now := nowUnix()
		_, err = tx.ExecContext(ctx, `
INSERT INTO inventory_counts(role, username, grade, diameter, supplier, roll_count,
  weight1, weight2, weight3, weight4, weight5, exact1, exact2, exact3, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(grade, diameter, supplier) WHERE role='Admin' DO UPDATE SET
  weight1=excluded.weight1, weight2=excluded.weight2, weight3=excluded.weight3,
  weight4=excluded.weight4, weight5=excluded.weight5,
  exact1=excluded.exact1, exact2=excluded.exact2, exact3=excluded.exact3,
  updated_at=excluded.updated_at
`, RoleAdmin, RoleAdmin, grade, diameter, supplier,
			weights[0], weights[1], weights[2], weights[3], weights[4],
			exacts[0], exacts[1], exacts[2], now, now)
		return err
	})
	return created, err
}

// InsertGuestCount appends a guest roll tally. Repeated submissions for
// the same material accumulate as separate rows.
func (d *DB) InsertGuestCount(ctx context.Context, username, grade string, diameter float64, supplier string, rolls int64) (int64, error) {
	if username == "" {
		return 0, errors.New("username is required")
	}
	var id int64
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		now := nowUnix()
		res, err := tx.ExecContext(ctx, `
INSERT INTO inventory_counts(role, username, grade, diameter, supplier, roll_count, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, RoleGuest, username, grade, diameter, supplier, rolls, now, now)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// ListInventoryCounts returns every inventory row, both roles, for the
// report aggregator.
func (d *DB) ListInventoryCounts(ctx context.Context) ([]InventoryCount, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT `+inventoryColumns+` FROM inventory_counts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InventoryCount
	for rows.Next() {
		c, err := scanInventoryCount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListInventoryCountsByRole returns one role's rows, newest first, for
// the deletion panel.
func (d *DB) ListInventoryCountsByRole(ctx context.Context, role string) ([]InventoryCount, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT `+inventoryColumns+` FROM inventory_counts WHERE role=? ORDER BY created_at DESC, id DESC
`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InventoryCount
	for rows.Next() {
		c, err := scanInventoryCount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteInventoryCount removes one row by id. ErrNotFound when absent.
func (d *DB) DeleteInventoryCount(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM inventory_counts WHERE id=?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AdminMaterialOptions returns the sorted distinct grades and diameters
// from admin rows. Guest entry forms offer only materials the admin has
// registered.
func (d *DB) AdminMaterialOptions(ctx context.Context) (MaterialOptions, error) {
	var opts MaterialOptions
	rows, err := d.sql.QueryContext(ctx, `
SELECT DISTINCT grade, diameter FROM inventory_counts WHERE role=?
`, RoleAdmin)
	if err != nil {
		return opts, err
	}
	defer rows.Close()

	gradeSet := map[string]bool{}
	diameterSet := map[float64]bool{}
	for rows.Next() {
		var g string
		var dm float64
		if err := rows.Scan(&g, &dm); err != nil {
			return opts, err
		}
		gradeSet[g] = true
		diameterSet[dm] = true
	}
	if err := rows.Err(); err != nil {
		return opts, err
	}

	for g := range gradeSet {
		opts.Grades = append(opts.Grades, g)
	}
	for dm := range diameterSet {
		opts.Diameters = append(opts.Diameters, dm)
	}
	sort.Strings(opts.Grades)
	sort.Float64s(opts.Diameters)
	return opts, nil
}

// InsertMachineRecord appends a guest machine-run submission.
func (d *DB) InsertMachineRecord(ctx context.Context, username, machine, grade string, diameter float64, weights [5]float64) (int64, error) {
	if username == "" {
		return 0, errors.New("username is required")
	}
	var id int64
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO machine_records(username, machine, grade, diameter, weight1, weight2, weight3, weight4, weight5, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, username, machine, grade, diameter, weights[0], weights[1], weights[2], weights[3], weights[4], nowUnix())
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// ListMachineRecords returns all machine records, newest first.
func (d *DB) ListMachineRecords(ctx context.Context) ([]MachineRecord, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT id, username, machine, grade, diameter, weight1, weight2, weight3, weight4, weight5, created_at
FROM machine_records ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MachineRecord
	for rows.Next() {
		var m MachineRecord
		if err := rows.Scan(&m.ID, &m.Username, &m.Machine, &m.Grade, &m.Diameter,
			&m.Weights[0], &m.Weights[1], &m.Weights[2], &m.Weights[3], &m.Weights[4], &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMachineRecord removes one machine record by id.
func (d *DB) DeleteMachineRecord(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM machine_records WHERE id=?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateSession inserts a new session token with expiration.
func (d *DB) CreateSession(ctx context.Context, token, role, username string, ttl time.Duration) error {
	if token == "" || role == "" || username == "" {
		return errors.New("invalid session")
	}
	now := nowUnix()
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO sessions(token, role, username, created_at, expires_at)
VALUES(?, ?, ?, ?, ?)
`, token, role, username, now, now+int64(ttl.Seconds()))
	return err
}

// GetSession looks up a session by token.
func (d *DB) GetSession(ctx context.Context, token string) (*Session, bool, error) {
	var s Session
	err := d.sql.QueryRowContext(ctx, `
SELECT token, role, username, created_at, expires_at FROM sessions WHERE token=?
`, token).Scan(&s.Token, &s.Role, &s.Username, &s.CreatedAt, &s.ExpiresAt)
	if err == nil {
		return &s, true, nil
	}
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	return nil, false, err
}

// DeleteSession removes a session by token.
func (d *DB) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("token is required")
	}
	_, err := d.sql.ExecContext(ctx, `DELETE FROM sessions WHERE token=?`, token)
	return err
}

// DeleteExpiredSessions deletes sessions that have expired.
func (d *DB) DeleteExpiredSessions(ctx context.Context, nowUnix int64) (int64, error) {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, nowUnix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetConfig fetches a single config key from the database.
// The boolean indicates whether the key exists.
func (d *DB) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&v)
	if err == nil {
		return v, true, nil
	}
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	return "", false, err
}

// SetConfig upserts a config key/value pair and updates its timestamp.
func (d *DB) SetConfig(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("config key is required")
	}
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO config(key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value, nowUnix())
	return err
}

// DeleteConfig removes a config key if present.
func (d *DB) DeleteConfig(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("config key is required")
	}
	_, err := d.sql.ExecContext(ctx, `DELETE FROM config WHERE key=?`, key)
	return err
}

// IsInitialized reports whether setup has completed.
func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	v, ok, err := d.GetConfig(ctx, "initialized")
	if err != nil {
		return false, err
	}
	return ok && v == "1", nil
}

// SetInitialized marks the database as setup-complete.
func (d *DB) SetInitialized(ctx context.Context) error {
	return d.SetConfig(ctx, "initialized", "1")
}

// GetAdminPasswordHash returns the stored shared admin password hash.
// Absent means Admin login requires no password.
func (d *DB) GetAdminPasswordHash(ctx context.Context) (string, bool, error) {
	return d.GetConfig(ctx, "admin_password_hash")
}

// SetAdminPasswordHash stores the shared admin password hash.
func (d *DB) SetAdminPasswordHash(ctx context.Context, hash string) error {
	return d.SetConfig(ctx, "admin_password_hash", hash)
}

// ClearAdminPasswordHash removes the shared admin password, reopening
// passwordless Admin login.
func (d *DB) ClearAdminPasswordHash(ctx context.Context) error {
	return d.DeleteConfig(ctx, "admin_password_hash")
}
