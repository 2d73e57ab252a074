// Package scaffold creates the starter files for a new racksmith project.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/racksmith/racksmith/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// GenerateWorkspaceName returns a fresh workspace name with a random
// suffix, so two projects on the same Redis server never collide.
func GenerateWorkspaceName() string {
	return "studio-" + uuid.NewString()[:8]
}

// Initialize creates the racksmith project structure in the current
// directory. If force is true, it will remove the existing files first.
func Initialize(workspace string, force bool) error {
	if force {
		if err := handleForce(); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles(workspace)
	if err != nil {
		return err
	}

	if err := createDirectories(); err != nil {
		return err
	}

	if err := writeFiles(files); err != nil {
		return err
	}

	return validateCreatedFiles()
}

// handleForce removes existing files if --force was specified
func handleForce() error {
	for _, path := range []string{"racksmith.yml", "rig.yml"} {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("⚠️  Removing existing %s...\n", path)
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
	}

	for _, dir := range []string{"templates", "gallery"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fmt.Printf("⚠️  Removing existing %s/ directory...\n", dir)
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s/ directory: %w", dir, err)
			}
		}
	}

	return nil
}

// getTemplateFiles reads and processes all template files
func getTemplateFiles(workspace string) ([]FileInfo, error) {
	read := func(name string) ([]byte, error) {
		data, err := templatesFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", name, err)
		}
		return data, nil
	}

	racksmithYml, err := read("racksmith.yml.tmpl")
	if err != nil {
		return nil, err
	}
	racksmithYml = []byte(strings.ReplaceAll(string(racksmithYml), "{{WORKSPACE}}", workspace))

	rigYml, err := read("rig.yml.tmpl")
	if err != nil {
		return nil, err
	}

	starterYml, err := read("starter.yml.tmpl")
	if err != nil {
		return nil, err
	}

	modulesYml, err := read("modules.yml.tmpl")
	if err != nil {
		return nil, err
	}

	return []FileInfo{
		{Path: "racksmith.yml", Content: racksmithYml, Permissions: 0644},
		{Path: "rig.yml", Content: rigYml, Permissions: 0644},
		{Path: filepath.Join("templates", "starter.yml"), Content: starterYml, Permissions: 0644},
		{Path: filepath.Join("gallery", "demo-modules.yml"), Content: modulesYml, Permissions: 0644},
	}, nil
}

// createDirectories creates the necessary directory structure
func createDirectories() error {
	for _, dir := range []string{"templates", "gallery"} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles checks that the generated config actually loads.
func validateCreatedFiles() error {
	if _, err := config.Load("racksmith.yml"); err != nil {
		return fmt.Errorf("created racksmith.yml is invalid: %w", err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess(workspace string) {
	fmt.Println("\n✅ Successfully initialized racksmith project!")
	fmt.Println("\nCreated:")
	fmt.Println("  ✓ racksmith.yml")
	fmt.Println("  ✓ rig.yml")
	fmt.Println("  ✓ templates/starter.yml")
	fmt.Println("  ✓ gallery/demo-modules.yml")
	fmt.Printf("\nWorkspace: %s\n", workspace)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Import the demo modules: racksmith gallery add gallery/demo-modules.yml")
	fmt.Println("  2. Describe your rack in rig.yml")
	fmt.Println("  3. Run 'racksmith plan' to generate layouts and a patch library")
}
