package daemon

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"svcboard/internal/controller"
)

// Options configures StartDaemon.
type Options struct {
	Backend controller.Backend
	// Kind names the backend in ping responses.
	Kind   string
	Logger zerolog.Logger
}

// Server wraps the gRPC server and its UNIX listener
type Server struct {
	grpc *grpc.Server
	ln   net.Listener
	path string
}

// Path returns the socket the server listens on.
func (s *Server) Path() string {
	return s.path
}

// Close stops the server and unlinks the socket
func (s *Server) Close() error {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.ln != nil {
		// GracefulStop already closed it
		_ = s.ln.Close()
	}
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return RemovePID()
}

// StartDaemon binds the UNIX socket and serves the ServiceBoard API.
func StartDaemon(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, errors.New("daemon: backend is required")
	}
	if err := EnsureRuntimeDir(); err != nil {
		return nil, fmt.Errorf("create runtime dir: %w", err)
	}
	path := SocketPath()

	// If stale socket file exists but daemon is not running, remove it
	if _, err := os.Stat(path); err == nil && !IsRunning() {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, err
	}

	gs := grpc.NewServer()
	RegisterServiceBoardServer(gs, newService(opts.Backend, opts.Kind, opts.Logger))

	s := &Server{grpc: gs, ln: ln, path: path}
	if err := WritePID(os.Getpid()); err != nil {
		s.Close()
		return nil, err
	}
	go func() {
		if err := gs.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			opts.Logger.Error().Err(err).Msg("grpc server stopped")
		}
	}()
	opts.Logger.Info().Str("socket", path).Str("backend", opts.Kind).Msg("daemon listening")
	return s, nil
}

// StopRunningDaemon sends a termination signal to the currently running daemon if any.
func StopRunningDaemon(force bool) error {
	pid, err := RunningPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if IsRunning() {
				return fmt.Errorf("daemon is running but PID file %q is missing; stop it manually", PIDPath())
			}
			return nil
		}
		return fmt.Errorf("unable to read daemon PID: %w", err)
	}
	if pid == os.Getpid() {
		return errors.New("refusing to stop current process")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := sendSignal(proc, syscall.SIGTERM); err != nil {
		return err
	}
	if waitForShutdown(3 * time.Second) {
		return nil
	}
	if !force {
		return fmt.Errorf("daemon process %d did not exit after SIGTERM", pid)
	}
	if err := sendSignal(proc, syscall.SIGKILL); err != nil {
		return err
	}
	if waitForShutdown(2 * time.Second) {
		return nil
	}
	return fmt.Errorf("daemon process %d did not exit after SIGKILL", pid)
}

func sendSignal(proc *os.Process, sig syscall.Signal) error {
	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = RemovePID()
			return nil
		}
		return err
	}
	return nil
}

func waitForShutdown(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsRunning() {
			_ = RemovePID()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
