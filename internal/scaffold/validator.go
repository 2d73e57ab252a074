package scaffold

import (
	"fmt"
	"os"
)

// CheckExisting checks if the starter files already exist in the current
// directory. Returns an error if they do, nil otherwise.
func CheckExisting() error {
	var existingFiles []string

	for _, path := range []string{"racksmith.yml", "rig.yml"} {
		if _, err := os.Stat(path); err == nil {
			existingFiles = append(existingFiles, path)
		}
	}

	for _, dir := range []string{"templates", "gallery"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			existingFiles = append(existingFiles, dir+"/")
		}
	}

	if len(existingFiles) > 0 {
		errMsg := "project already initialized\n\nFound existing"
		if len(existingFiles) == 1 {
			errMsg += fmt.Sprintf(": %s", existingFiles[0])
		} else {
			errMsg += " files:\n"
			for _, file := range existingFiles {
				errMsg += fmt.Sprintf("  - %s\n", file)
			}
		}
		errMsg += "\nUse 'racksmith init --force' to reinitialize (this will overwrite existing configuration)"

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}
