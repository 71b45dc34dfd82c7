// Package dashboard renders Grafana dashboards over the GreptimeDB policy tables.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"diffusion-sim/internal/timeseries"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

// DatasourceEnv names the variable holding the Grafana datasource UID.
const DatasourceEnv = "GREPTIMEDB_DATASOURCE_UID"

// Tables are the table names substituted into the templates.
type Tables struct {
	Adoption string
	Events   string
}

// DefaultTables returns the tables written by the GreptimeDB sink.
func DefaultTables() Tables {
	return Tables{Adoption: timeseries.AdoptionTableName, Events: timeseries.EventTableName}
}

// Render executes every embedded dashboard template and writes the results to
// outDir, dropping the .tmpl suffix. Templates read env vars through the
// "env" function, which fails on unset variables.
func Render(outDir string, tables Tables) ([]string, error) {
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
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, entry := range names {
		t, err := template.New(entry.Name()).Funcs(funcMap).ParseFS(templates, "templates/"+entry.Name())
		if err != nil {
			return nil, err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(entry.Name(), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return nil, err
		}
		if err := t.Execute(f, tables); err != nil {
			f.Close()
			return nil, fmt.Errorf("render %s: %w", entry.Name(), err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		written = append(written, outPath)
	}
	return written, nil
}
