package setup

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/adrianhv34-code/inventario-app/internal/auth"
	"github.com/adrianhv34-code/inventario-app/internal/db"
)

type ResetAdminOptions struct {
	DBPath           string
	AdminPassword    string
	AdminPasswordEnv bool
	Clear            bool
}

// ResetAdmin replaces the shared admin password, or removes it entirely
// when Clear is set.
func ResetAdmin(ctx context.Context, opt ResetAdminOptions) error {
	if opt.DBPath == "" {
		return errors.New("db path is required")
	}

	d, err := db.Open(ctx, opt.DBPath)
	if err != nil {
		return err
	}
	defer d.Close()

	initialized, err := d.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if !initialized {
		return errors.New("not initialized; run setup")
	}

	if opt.Clear {
		return d.ClearAdminPasswordHash(ctx)
	}

	pass, err := resolveAdminPassword("Set admin password", opt.AdminPassword, opt.AdminPasswordEnv)
	if err != nil {
		return err
	}

	h, err := auth.HashPassword(pass, auth.DefaultParams())
	if err != nil {
		return err
	}
	return d.SetAdminPasswordHash(ctx, h)
}

func resolveAdminPassword(label string, flagValue string, fromEnv bool) (string, error) {
	if flagValue != "" && fromEnv {
		return "", errors.New("choose one of --admin-password or --admin-password-env")
	}
	if fromEnv {
		v := strings.TrimSpace(os.Getenv("INVENTARIO_ADMIN_PASSWORD"))
		if v == "" {
			return "", errors.New("INVENTARIO_ADMIN_PASSWORD is empty")
		}
		return v, nil
	}
	if flagValue != "" {
		return flagValue, nil
	}
	return promptPassword(label, false)
}
