// Package templates provides embedded template files for project creation.
package templates

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed init/*
var FS embed.FS

// TemplateData contains the data for template substitution.
type TemplateData struct {
	ModulePath  string // e.g., "github.com/acme/dashboard"
	AppName     string // e.g., "dashboard"
	Title       string // e.g., "Dashboard"
	LoomVersion string // e.g., "latest"
}

// NewTemplateData derives the template values for a project called appName
// with the given module path.
func NewTemplateData(modulePath, appName string) *TemplateData {
	return &TemplateData{
		ModulePath:  modulePath,
		AppName:     appName,
		Title:       titleCase(appName),
		LoomVersion: "latest",
	}
}

// titleCase turns "my-app_name" into "My App Name".
func titleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Loom"
	}
	return strings.Join(words, " ")
}

// ProcessTemplate processes a template string with the given data.
func ProcessTemplate(content string, data *TemplateData) (string, error) {
	tmpl, err := template.New("").Option("missingkey=error").Parse(content)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ListFiles returns all files in the embedded filesystem under the given path.
func ListFiles(path string) ([]string, error) {
	var files []string

	err := fs.WalkDir(FS, path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})

	return files, err
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(path string) ([]byte, error) {
	return FS.ReadFile(path)
}

// GetInitFiles returns the list of init template files.
func GetInitFiles() ([]string, error) {
	return ListFiles("init")
}

// OutputName returns the file name a template is written to: its base name
// without the ".tmpl" suffix.
func OutputName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".tmpl")
}
