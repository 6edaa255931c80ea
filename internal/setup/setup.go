// Package setup performs one-time initialization of the inventario
// database: schema creation and the optional shared admin password.
package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianhv34-code/inventario-app/internal/auth"
	"github.com/adrianhv34-code/inventario-app/internal/db"
	"golang.org/x/term"
)

type Options struct {
	DBPath string
}

// Run creates the database file, applies migrations and prompts for the
// shared admin password. Leaving the prompt empty keeps admin access
// passwordless.
func Run(ctx context.Context, opt Options) error {
	if opt.DBPath == "" {
		return errors.New("db path is required")
	}
	if dir := filepath.Dir(opt.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	d, err := db.Open(ctx, opt.DBPath)
	if err != nil {
		return err
	}
	defer d.Close()
	_ = os.Chmod(opt.DBPath, 0o600)

	initialized, err := d.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return errors.New("already initialized")
	}

	pass, err := promptPassword("Set admin password (empty for none)", true)
	if err != nil {
		return err
	}
	if pass != "" {
		h, err := auth.HashPassword(pass, auth.DefaultParams())
		if err != nil {
			return err
		}
		if err := d.SetAdminPasswordHash(ctx, h); err != nil {
			return err
		}
	}

	return d.SetInitialized(ctx)
}

func promptPassword(label string, allowEmpty bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		for {
			fmt.Fprintf(os.Stderr, "%s: ", label)
			p1b, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return "", err
			}
			p1 := strings.TrimSpace(string(p1b))
			if p1 == "" {
				if allowEmpty {
					return "", nil
				}
				fmt.Fprintln(os.Stderr, "password cannot be empty")
				continue
			}
			fmt.Fprint(os.Stderr, "Confirm password: ")
			p2b, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return "", err
			}
			if p1 != strings.TrimSpace(string(p2b)) {
				fmt.Fprintln(os.Stderr, "passwords do not match")
				continue
			}
			return p1, nil
		}
	}

	// Non-interactive fallback (e.g. piped input). Echo suppression isn't possible.
	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprintf(os.Stderr, "%s: ", label)
		p1, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		p1 = strings.TrimSpace(p1)
		if p1 == "" {
			if allowEmpty {
				return "", nil
			}
			fmt.Fprintln(os.Stderr, "password cannot be empty")
			continue
		}
		fmt.Fprint(os.Stderr, "Confirm password: ")
		p2, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		if p1 != strings.TrimSpace(p2) {
			fmt.Fprintln(os.Stderr, "passwords do not match")
			continue
		}
		return p1, nil
	}
}
