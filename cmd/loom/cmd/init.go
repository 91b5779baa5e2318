package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/module"

	"github.com/loom-ui/loom/cmd/loom/internal/templates"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Create a new Loom project",
		Long: `Create a new Loom project in a new directory.

This command creates:
  - A new directory at the specified path
  - go.mod with the specified module path
  - main.go with a starter application
  - loom.yaml with the default settings

The app name is derived from the directory basename, which is also
the module path unless one is given.

Examples:
  loom init myapp
  loom init myapp github.com/username/myapp
  loom init ./projects/myapp`,
		Usage: "loom init <directory> [module-path]",
		Run:   runInit,
	})
}

// runInit scaffolds a project into a new directory and resolves its
// dependencies with the go command.
func runInit(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("directory is required\n\nUsage: loom init <directory> [module-path]")
	}

	dir, err := projectDir(args[0])
	if err != nil {
		return err
	}

	modulePath := filepath.Base(dir)
	if len(args) > 1 {
		modulePath = args[1]
	}
	if err := checkModulePath(modulePath); err != nil {
		return err
	}

	if err := scaffoldProject(dir, modulePath); err != nil {
		return err
	}

	// Resolve Go dependencies
	fmt.Fprintln(stdout, "  Adding loom dependency...")
	getCmd := exec.Command("go", "get", "github.com/loom-ui/loom@latest")
	getCmd.Dir = dir
	getCmd.Stdout = os.Stdout
	getCmd.Stderr = os.Stderr
	if err := getCmd.Run(); err != nil {
		fmt.Fprintln(stdout, "  Warning: go get failed; run it again once you are online")
	}

	fmt.Fprintln(stdout, "  Running go mod tidy...")
	tidyCmd := exec.Command("go", "mod", "tidy")
	tidyCmd.Dir = dir
	tidyCmd.Stdout = os.Stdout
	tidyCmd.Stderr = os.Stderr
	if err := tidyCmd.Run(); err != nil {
		fmt.Fprintln(stdout, "  Warning: go mod tidy failed")
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Project created successfully!\n\n")
	fmt.Fprintf(stdout, "Next steps:\n")
	fmt.Fprintf(stdout, "  cd %s\n", dir)
	fmt.Fprintf(stdout, "  go run .    # Serve on http://localhost:8000\n")

	return nil
}

// scaffoldProject creates the project directory and writes the template files.
// It touches nothing but the filesystem, so tests can call it offline.
func scaffoldProject(dir, modulePath string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	fmt.Fprintf(stdout, "Creating new Loom project: %s\n", filepath.Base(dir))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// dir did not exist before, so a failed scaffold removes only what it made.
	files, err := templates.GetInitFiles()
	if err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("failed to list templates: %w", err)
	}

	data := templates.NewTemplateData(modulePath, filepath.Base(dir))
	for _, path := range files {
		destName := templates.OutputName(path)
		if err := writeInitTemplate(dir, path, destName, data); err != nil {
			os.RemoveAll(dir)
			return err
		}
		fmt.Fprintf(stdout, "  Created %s\n", destName)
	}

	return nil
}

func writeInitTemplate(projectDir, templatePath, destName string, data *templates.TemplateData) error {
	content, err := templates.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}

	out, err := templates.ProcessTemplate(string(content), data)
	if err != nil {
		return fmt.Errorf("failed to process template %s: %w", templatePath, err)
	}

	destPath := filepath.Join(projectDir, destName)
	if err := os.WriteFile(destPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", destName, err)
	}

	return nil
}

// projectDir cleans the init target and refuses locations that hold the
// working directory or sit directly under a filesystem root.
func projectDir(raw string) (string, error) {
	if strings.HasPrefix(raw, "~") {
		return "", fmt.Errorf("tilde (~) is not expanded by loom; use an absolute path or $HOME instead")
	}
	dir := filepath.Clean(raw)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(abs, wd); err == nil && !strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("directory %q contains the working directory; pick a new directory", dir)
		}
	}
	if parent := filepath.Dir(abs); filepath.Dir(parent) == parent {
		return "", fmt.Errorf("refusing to create a project directly under %s", parent)
	}
	return dir, nil
}

// checkModulePath rejects module paths the go command would not accept in
// a go.mod module directive.
func checkModulePath(path string) error {
	if path == "" {
		return fmt.Errorf("module path cannot be empty")
	}
	if err := module.CheckImportPath(path); err != nil {
		return fmt.Errorf("invalid module path %q: %w", path, err)
	}
	return nil
}
