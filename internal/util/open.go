package util

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// openCommand returns the program and arguments that hand target to the
// desktop's default handler on goos.
func openCommand(goos, target string) (string, []string) {
	switch goos {
	case "windows":
		// rundll32 also works on Windows 7, unlike "cmd /c start".
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	case "darwin":
		return "open", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

// fallbackCommands are tried in order when the primary opener fails.
func fallbackCommands(goos string) []string {
	switch goos {
	case "windows":
		return []string{"explorer"}
	case "linux":
		return []string{"gio", "sensible-browser"}
	default:
		return nil
	}
}

// Open hands target (a path or URL) to the default application.
func Open(target string) error {
	name, args := openCommand(runtime.GOOS, target)
	err := exec.Command(name, args...).Start()
	if err == nil {
		return nil
	}
	for _, alt := range fallbackCommands(runtime.GOOS) {
		altArgs := []string{target}
		if alt == "gio" {
			altArgs = []string{"open", target}
		}
		if exec.Command(alt, altArgs...).Start() == nil {
			return nil
		}
	}
	return err
}

// OpenFile opens an existing file, typically the produced spreadsheet.
func OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return Open(abs)
}
