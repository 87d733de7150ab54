package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"reliefops-sim/internal/telemetry"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Tables names the GreptimeDB tables the dashboards query.
type Tables struct {
	Moves      string
	ZoneEvents string
	Stats      string
}

// DefaultTables returns the table names the writers are configured with.
func DefaultTables() Tables {
	return Tables{
		Moves:      telemetry.MoveTableName,
		ZoneEvents: telemetry.ZoneEventTableName,
		Stats:      telemetry.StatsTableName,
	}
}

// Render parses dashboard templates and writes rendered dashboards to outDir.
func Render(outDir string) error {
	return RenderTables(outDir, DefaultTables())
}

// RenderTables is Render with explicit table names.
func RenderTables(outDir string, tables Tables) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, entry := range names {
		tplName := entry.Name()
		t, err := template.New(tplName).Funcs(funcMap).ParseFS(templates, "templates/"+tplName)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(tplName, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, tables); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", tplName, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
