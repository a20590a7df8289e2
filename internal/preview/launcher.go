package preview

import (
	"fmt"
	"os/exec"
	"strconv"
)

// DefaultCompanion is the GUI renderer binary looked up on PATH when no
// override is configured.
const DefaultCompanion = "nt-preview"

// LaunchCompanion starts the GUI preview process detached, handing it
// the socket path to listen on and the backend to fetch assets from.
// It returns the child's pid.
func LaunchCompanion(companion, socketPath, apiScheme, apiHost string, apiPort int, dark bool) (int, error) {
	if companion == "" {
		companion = DefaultCompanion
	}

	args := []string{
		"--socket-path", socketPath,
		"--api-scheme", apiScheme,
		"--api-host", apiHost,
		"--api-port", strconv.Itoa(apiPort),
	}
	if dark {
		args = append(args, "--dark")
	}

	cmd := exec.Command(companion, args...)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", companion, err)
	}

	pid := cmd.Process.Pid
	// Reap the child in the background so it never zombies under us.
	go cmd.Wait()

	return pid, nil
}
