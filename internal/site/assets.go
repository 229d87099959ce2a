package site

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed assets/styles.css assets/gitignore
var assets embed.FS

// InstallAssets copies the shipped stylesheet into the docs dir and appends
// the build outputs to its .gitignore. Existing files are kept unless force
// is set; .gitignore entries are only ever appended once.
func InstallAssets(docsDir string, force bool) error {
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		return fmt.Errorf("creating docs dir: %w", err)
	}

	cssPath := filepath.Join(docsDir, "styles.css")
	if _, err := os.Stat(cssPath); os.IsNotExist(err) || force {
		css, err := assets.ReadFile("assets/styles.css")
		if err != nil {
			return fmt.Errorf("reading embedded stylesheet: %w", err)
		}
		if err := os.WriteFile(cssPath, css, 0644); err != nil {
			return fmt.Errorf("writing stylesheet: %w", err)
		}
	}

	return appendGitignore(filepath.Join(docsDir, ".gitignore"))
}

func appendGitignore(path string) error {
	wanted, err := assets.ReadFile("assets/gitignore")
	if err != nil {
		return fmt.Errorf("reading embedded gitignore: %w", err)
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}
	present := make(map[string]bool)
	for _, line := range strings.Split(string(existing), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, line := range strings.Split(strings.TrimSpace(string(wanted)), "\n") {
		if line = strings.TrimSpace(line); line != "" && !present[line] {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	out := string(existing)
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	out += strings.Join(missing, "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}

// RemoveAssets deletes the files InstallAssets created. User-authored
// content in the docs dir is untouched.
func RemoveAssets(docsDir string) error {
	for _, name := range []string{"styles.css"} {
		if err := os.Remove(filepath.Join(docsDir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}
