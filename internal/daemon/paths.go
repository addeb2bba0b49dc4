package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// SocketBaseName is the UNIX socket filename
const SocketBaseName = "svcboard.sock"

const (
	pidFileName      = "svcboard.pid"
	snapshotFileName = "svcboard-memory.json"
)

// SocketPath returns the full path to the UNIX socket
// Order of precedence (first wins):
// 1) SVCBOARD_SOCKET (absolute path to socket)
// 2) SVCBOARD_RUNTIME_DIR
// 3) if runtime=linux: $XDG_RUNTIME_DIR or /run/user/<UID>
//    else (darwin, *bsd, etc): /tmp
func SocketPath() string {
	if explicit := os.Getenv("SVCBOARD_SOCKET"); explicit != "" {
		return explicit
	}

	uid := currentUID()

	// Allow override of parent dir
	if rd := os.Getenv("SVCBOARD_RUNTIME_DIR"); rd != "" {
		return filepath.Join(rd, SocketBaseName)
	}

	if runtime.GOOS == "linux" {
		if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
			return filepath.Join(v, SocketBaseName)
		}
		// root has no /run/user entry
		if uid == "0" {
			return filepath.Join("/run", SocketBaseName)
		}
		return filepath.Join("/run/user", uid, SocketBaseName)
	}

	// macOS / BSD / other unix: keep it short to avoid sun_path length limit
	return filepath.Join("/tmp", "svcboard-"+uid+".sock")
}

// EnsureRuntimeDir creates the socket directory if it doesn't exist
func EnsureRuntimeDir() error {
	return os.MkdirAll(filepath.Dir(SocketPath()), 0o700)
}

// PIDPath returns the full path to the PID file
func PIDPath() string {
	return filepath.Join(filepath.Dir(SocketPath()), pidFileName)
}

// SnapshotPath is where the daemon persists simulated memory-backend state.
func SnapshotPath() string {
	return filepath.Join(filepath.Dir(SocketPath()), snapshotFileName)
}

// WritePID stores the provided pid into the pid file
func WritePID(pid int) error {
	if err := EnsureRuntimeDir(); err != nil {
		return err
	}
	return os.WriteFile(PIDPath(), []byte(fmt.Sprintf("%d\n", pid)), 0o600)
}

// RemovePID removes the pid file if it exists
func RemovePID() error {
	if err := os.Remove(PIDPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// RunningPID returns the pid stored in the pid file if any
func RunningPID() (int, error) {
	data, err := os.ReadFile(PIDPath())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// IsRunning tries to ping the daemon over gRPC and returns true if it responds.
func IsRunning() bool {
	if _, err := os.Stat(SocketPath()); err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	client, conn, err := Dial(ctx)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := client.Ping(ctx, &PingRequest{}); err != nil {
		return false
	}
	return true
}

func currentUID() string {
	u, err := user.Current()
	if err == nil && u != nil && u.Uid != "" {
		return u.Uid
	}
	return "0"
}
