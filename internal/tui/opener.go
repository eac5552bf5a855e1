package tui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener hands a URL (web, tel:, maps) to the operating system.
type Opener interface {
	Open(url string) error
}

// SystemOpener opens URLs with the platform's default handler.
type SystemOpener struct{}

func (SystemOpener) Open(url string) error {
	if url == "" {
		return fmt.Errorf("tui: nothing to open")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
