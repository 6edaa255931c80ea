// Package resetadmin implements the "inventario reset-admin" CLI
// subcommand. It replaces or removes the shared admin password directly
// in the SQLite database.
package resetadmin

import (
	"context"
	"flag"

	isetup "github.com/adrianhv34-code/inventario-app/internal/setup"
)

// Run parses reset-admin flags and executes the password reset. The
// reset is local-only and does not require the server to be running.
func Run(args []string) error {
	fs := flag.NewFlagSet("reset-admin", flag.ContinueOnError)
	var opt isetup.ResetAdminOptions
	fs.StringVar(&opt.DBPath, "db", "./inventario.db", "sqlite database path")
	fs.StringVar(&opt.AdminPassword, "admin-password", "", "set admin password non-interactively")
	fs.BoolVar(&opt.AdminPasswordEnv, "admin-password-env", false, "read admin password from INVENTARIO_ADMIN_PASSWORD")
	fs.BoolVar(&opt.Clear, "clear", false, "remove the admin password (admin login without clave)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return isetup.ResetAdmin(context.Background(), opt)
}
