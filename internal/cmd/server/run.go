// Package server implements the "inventario server" CLI subcommand.
package server

import (
	"context"
	"flag"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrianhv34-code/inventario-app/internal/config"
	"github.com/adrianhv34-code/inventario-app/internal/db"
	"github.com/adrianhv34-code/inventario-app/internal/logging"
	"github.com/adrianhv34-code/inventario-app/internal/webapp"
)

type Options struct {
	ConfigPath string
	LogLevel   string
	LogJSON    bool

	DBPath   string
	BindAddr string
	Port     int
}

func Run(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	var opt Options
	fs.StringVar(&opt.ConfigPath, "config", "", "path to inventario.yaml (when set, other flags are ignored)")
	fs.StringVar(&opt.LogLevel, "log-level", "info", "log level: debug|info|warning|error")
	fs.BoolVar(&opt.LogJSON, "log-json", false, "emit logs as JSON")
	fs.StringVar(&opt.DBPath, "db", "./inventario.db", "sqlite database path")
	fs.StringVar(&opt.BindAddr, "bind", "127.0.0.1", "bind address")
	fs.IntVar(&opt.Port, "port", 5000, "HTTP port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := config.Config{
		Log:  config.LogConfig{Level: opt.LogLevel, JSON: opt.LogJSON},
		DB:   config.DBConfig{Path: opt.DBPath},
		HTTP: config.HTTPConfig{Bind: opt.BindAddr, Port: opt.Port},
	}
	config.ApplyDefaults(&c)
	if opt.ConfigPath != "" {
		loaded, err := config.Load(opt.ConfigPath)
		if err != nil {
			return err
		}
		loaded.DB.Path = resolvePath(filepath.Dir(opt.ConfigPath), loaded.DB.Path)
		c = loaded
	}

	lg, _, err := logging.New(logging.Options{Level: c.Log.Level, JSON: c.Log.JSON, DefaultSlog: true})
	if err != nil {
		return err
	}

	ctx := context.Background()
	d, err := db.Open(ctx, c.DB.Path)
	if err != nil {
		return err
	}
	defer d.Close()

	if n, err := d.DeleteExpiredSessions(ctx, time.Now().Unix()); err != nil {
		return err
	} else if n > 0 {
		lg.Info("purged expired sessions", "count", n)
	}

	srv, err := webapp.New(d, lg, c.App.Suppliers, c.App.Machines)
	if err != nil {
		return err
	}
	lg.Info("server starting", "bind", c.HTTP.Bind, "port", c.HTTP.Port, "db", c.DB.Path)
	return srv.ListenAndServe(c.HTTP.Bind, c.HTTP.Port)
}

func resolvePath(baseDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
