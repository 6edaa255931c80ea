// Package setup implements the "inventario setup" CLI subcommand.
package setup

import (
	"context"
	"flag"

	isetup "github.com/adrianhv34-code/inventario-app/internal/setup"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	var dbPath string
	fs.StringVar(&dbPath, "db", "./inventario.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return isetup.Run(context.Background(), isetup.Options{DBPath: dbPath})
}
