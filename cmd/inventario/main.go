// Command inventario is the entry point for the warehouse inventory
// CLI. It dispatches to the setup, server, and reset-admin subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/adrianhv34-code/inventario-app/internal/cmd/resetadmin"
	"github.com/adrianhv34-code/inventario-app/internal/cmd/server"
	"github.com/adrianhv34-code/inventario-app/internal/cmd/setup"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(argv []string) error {
	if len(argv) < 2 {
		usage()
		return fmt.Errorf("missing subcommand")
	}

	switch argv[1] {
	case "setup":
		return setup.Run(argv[2:])
	case "server":
		return server.Run(argv[2:])
	case "reset-admin":
		return resetadmin.Run(argv[2:])
	case "-h", "--help", "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown subcommand: %s", argv[1])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "inventario <setup|server|reset-admin> [flags]")
}
