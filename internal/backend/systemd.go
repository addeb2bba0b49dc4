package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"svcboard/internal/catalog"
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

// Runner executes a command and returns its stdout. Errors carry stderr.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w", msg, err)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Systemd controls units through systemctl. Only units recognized as
// database-adjacent services are listed.
type Systemd struct {
	user bool
	run  Runner
}

// NewSystemd returns a systemd backend for scope "system" or "user". A nil
// runner uses ExecRunner.
func NewSystemd(scope string, run Runner) (*Systemd, error) {
	var user bool
	switch strings.ToLower(strings.TrimSpace(scope)) {
	case "", "system":
	case "user":
		user = true
	default:
		return nil, fmt.Errorf("unknown systemd scope %q", scope)
	}
	if run == nil {
		run = ExecRunner
	}
	return &Systemd{user: user, run: run}, nil
}

// systemdUnit represents a unit from systemctl list-units --output=json
type systemdUnit struct {
	Unit        string `json:"unit"`
	Load        string `json:"load"`
	Active      string `json:"active"`
	Sub         string `json:"sub"`
	Description string `json:"description"`
}

// systemdUnitFile represents a unit from systemctl list-unit-files --output=json
type systemdUnitFile struct {
	UnitFile string `json:"unit_file"`
	State    string `json:"state"`
}

func (s *Systemd) systemctl(ctx context.Context, args ...string) ([]byte, error) {
	if s.user {
		args = append([]string{"--user"}, args...)
	}
	return s.run(ctx, "systemctl", args...)
}

func (s *Systemd) ListItems(ctx context.Context) ([]model.Item, error) {
	out, err := s.systemctl(ctx, "list-units", "--type=service", "--all", "--output=json", "--no-pager")
	if err != nil {
		return nil, fmt.Errorf("systemctl list-units failed: %w", err)
	}
	var units []systemdUnit
	if err := json.Unmarshal(out, &units); err != nil {
		return nil, fmt.Errorf("failed to parse systemctl output: %w", err)
	}

	policies := map[string]model.StartupPolicy{}
	if out, err := s.systemctl(ctx, "list-unit-files", "--type=service", "--output=json", "--no-pager"); err == nil {
		var files []systemdUnitFile
		if json.Unmarshal(out, &files) == nil {
			for _, f := range files {
				policies[f.UnitFile] = mapUnitFileState(f.State)
			}
		}
	}

	items := make([]model.Item, 0)
	for _, u := range units {
		if u.Load == "not-found" {
			continue
		}
		id := strings.TrimSuffix(u.Unit, ".service")
		typ, ok := catalog.Detect(id)
		if !ok {
			continue
		}
		policy, ok := policies[u.Unit]
		if !ok {
			policy = policies[templateName(u.Unit)]
		}
		if policy == "" {
			policy = model.PolicyManual
		}
		if u.Load == "masked" {
			policy = model.PolicyDisabled
		}
		display := u.Description
		if display == "" {
			display = id
		}
		items = append(items, model.Item{
			ID:          id,
			DisplayName: display,
			Type:        typ,
			Status:      mapActiveState(u.Active, u.Sub),
			Policy:      policy,
			Description: u.Description,
		})
	}
	return items, nil
}

func (s *Systemd) Start(ctx context.Context, id string) error {
	return s.control(ctx, "start", id)
}

func (s *Systemd) Stop(ctx context.Context, id string) error {
	return s.control(ctx, "stop", id)
}

func (s *Systemd) Restart(ctx context.Context, id string) error {
	return s.control(ctx, "restart", id)
}

func (s *Systemd) control(ctx context.Context, action, id string) error {
	if strings.TrimSpace(id) == "" {
		return svcerr.New(svcerr.NotFound, id, "empty unit name")
	}
	unit := id
	if !strings.HasSuffix(unit, ".service") {
		unit += ".service"
	}
	if _, err := s.systemctl(ctx, action, unit); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return svcerr.New(svcerr.Timeout, id, "systemctl %s timed out", action)
		}
		classified := *svcerr.Classify(err, id)
		classified.Message = fmt.Sprintf("systemctl %s failed: %s", action, err)
		return &classified
	}
	return nil
}

// "postgresql@14-main.service" is configured through "postgresql@.service".
func templateName(unit string) string {
	at := strings.IndexByte(unit, '@')
	if at < 0 {
		return unit
	}
	return unit[:at+1] + ".service"
}

func mapActiveState(active, sub string) model.Status {
	switch active {
	case "active":
		if sub == "reload" {
			return model.StatusRestarting
		}
		return model.StatusRunning
	case "reloading":
		return model.StatusRestarting
	case "activating":
		return model.StatusStarting
	case "deactivating":
		return model.StatusStopping
	default:
		return model.StatusStopped
	}
}

func mapUnitFileState(state string) model.StartupPolicy {
	switch state {
	case "enabled", "enabled-runtime", "static", "alias", "indirect", "generated":
		return model.PolicyAutomatic
	case "masked", "masked-runtime":
		return model.PolicyDisabled
	default:
		return model.PolicyManual
	}
}
