package backend

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"svcboard/internal/model"
	"svcboard/internal/registry"
	"svcboard/internal/svcerr"
)

// MemoryOptions configures the simulated backend.
type MemoryOptions struct {
	// Seed is a JSON file of services; empty loads DemoItems.
	Seed string
	// Snapshot persists state between runs when set.
	Snapshot string
	// Latency is how long a transition stays in its transitional status.
	Latency time.Duration
	Logger  zerolog.Logger
}

// Memory simulates a service manager over a registry. It validates
// transitions the way a real manager does.
type Memory struct {
	reg     *registry.Registry
	latency time.Duration
	log     zerolog.Logger

	mu       sync.Mutex
	failures map[string]error
}

// NewMemory builds a Memory backend.
func NewMemory(opts MemoryOptions) (*Memory, error) {
	reg, err := registry.New(opts.Snapshot, opts.Logger)
	if err != nil {
		return nil, err
	}
	m := &Memory{reg: reg, latency: opts.Latency, log: opts.Logger, failures: make(map[string]error)}
	if reg.Len() > 0 {
		return m, nil
	}
	if opts.Seed != "" {
		n, err := reg.Seed(opts.Seed)
		if err != nil {
			return nil, err
		}
		m.log.Debug().Int("count", n).Str("seed", opts.Seed).Msg("memory backend seeded")
		return m, nil
	}
	for _, it := range DemoItems() {
		if _, err := reg.Add(it); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewMemoryWith builds a Memory backend holding exactly items.
func NewMemoryWith(latency time.Duration, items ...model.Item) (*Memory, error) {
	reg, err := registry.New("", zerolog.Nop())
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, err := reg.Add(it); err != nil {
			return nil, err
		}
	}
	return &Memory{reg: reg, latency: latency, log: zerolog.Nop(), failures: make(map[string]error)}, nil
}

// Registry exposes the underlying catalog.
func (m *Memory) Registry() *registry.Registry {
	return m.reg
}

// FailNext makes the next control call against id fail with err.
func (m *Memory) FailNext(id string, err error) {
	m.mu.Lock()
	m.failures[id] = err
	m.mu.Unlock()
}

func (m *Memory) ListItems(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := m.reg.List(registry.ListFilter{})
	items := make([]model.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Item())
	}
	return items, nil
}

func (m *Memory) Start(ctx context.Context, id string) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	switch {
	case e.Policy == model.PolicyDisabled:
		return svcerr.New(svcerr.InvalidState, id, "service is disabled")
	case e.Status == model.StatusRunning:
		return svcerr.New(svcerr.InvalidState, id, "service is already running")
	case e.Status == model.StatusStarting:
		return svcerr.New(svcerr.InvalidState, id, "service is already starting")
	}
	return m.transition(ctx, id, model.StatusStarting, model.StatusRunning)
}

func (m *Memory) Stop(ctx context.Context, id string) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	switch e.Status {
	case model.StatusStopped:
		return svcerr.New(svcerr.InvalidState, id, "service is already stopped")
	case model.StatusStopping:
		return svcerr.New(svcerr.InvalidState, id, "service is already stopping")
	}
	return m.transition(ctx, id, model.StatusStopping, model.StatusStopped)
}

// Restart stops a running service and starts it again; a stopped service is
// simply started.
func (m *Memory) Restart(ctx context.Context, id string) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	if e.Policy == model.PolicyDisabled {
		return svcerr.New(svcerr.InvalidState, id, "service is disabled")
	}
	return m.transition(ctx, id, model.StatusRestarting, model.StatusRunning)
}

func (m *Memory) lookup(id string) (registry.Entry, error) {
	e, ok := m.reg.Get(id)
	if !ok {
		return registry.Entry{}, svcerr.New(svcerr.NotFound, id, "service does not exist")
	}
	return e, nil
}

func (m *Memory) transition(ctx context.Context, id string, via, to model.Status) error {
	prev, _ := m.reg.Get(id)
	if _, err := m.reg.SetStatus(id, via); err != nil {
		return svcerr.New(svcerr.NotFound, id, "service does not exist")
	}
	if err := sleepCtx(ctx, m.latency); err != nil {
		_, _ = m.reg.SetStatus(id, prev.Status)
		return err
	}

	m.mu.Lock()
	failure := m.failures[id]
	delete(m.failures, id)
	m.mu.Unlock()
	if failure != nil {
		_, _ = m.reg.SetStatus(id, prev.Status)
		m.log.Debug().Str("id", id).Err(failure).Msg("simulated failure")
		return failure
	}

	if _, err := m.reg.SetStatus(id, to); err != nil {
		return svcerr.New(svcerr.NotFound, id, "service disappeared during transition")
	}
	return nil
}

// DemoItems is the built-in catalog used when no seed is configured.
func DemoItems() []model.Item {
	return []model.Item{
		{ID: "postgresql@16-main", DisplayName: "PostgreSQL 16 (main)", Type: model.TypePostgreSQL, Status: model.StatusRunning, Policy: model.PolicyAutomatic, Description: "PostgreSQL RDBMS"},
		{ID: "postgresql@15-reporting", DisplayName: "PostgreSQL 15 (reporting)", Type: model.TypePostgreSQL, Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "mysql", DisplayName: "MySQL Community Server", Type: model.TypeMySQL, Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "mariadb", DisplayName: "MariaDB 11 database server", Type: model.TypeMariaDB, Status: model.StatusRunning, Policy: model.PolicyAutomatic},
		{ID: "MSSQL$SQLEXPRESS", DisplayName: "SQL Server (SQLEXPRESS)", Type: model.TypeMSSQL, Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "SQLAgent$SQLEXPRESS", DisplayName: "SQL Server Agent (SQLEXPRESS)", Type: model.TypeMSSQL, Status: model.StatusStopped, Policy: model.PolicyDisabled},
		{ID: "mongod", DisplayName: "MongoDB Database Server", Type: model.TypeMongoDB, Status: model.StatusRunning, Policy: model.PolicyAutomatic},
		{ID: "cassandra", DisplayName: "Apache Cassandra", Type: model.TypeCassandra, Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "neo4j", DisplayName: "Neo4j Graph Database", Type: model.TypeNeo4j, Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "redis-server", DisplayName: "Redis Cache", Type: model.TypeRedis, Status: model.StatusRunning, Policy: model.PolicyAutomatic},
		{ID: "memcached", DisplayName: "Memcached", Type: model.TypeMemcached, Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "elasticsearch", DisplayName: "Elasticsearch", Type: model.TypeElasticsearch, Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "influxdb", DisplayName: "InfluxDB", Type: model.TypeInfluxDB, Status: model.StatusRunning, Policy: model.PolicyAutomatic},
		{ID: "rabbitmq-server", DisplayName: "RabbitMQ Broker", Type: model.TypeRabbitMQ, Status: model.StatusStopped, Policy: model.PolicyManual},
	}
}
