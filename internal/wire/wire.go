// Package wire provides dependency injection for the custody application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/custody/internal/adapters/cli"
	"github.com/example/custody/internal/adapters/sqlite"
	"github.com/example/custody/internal/app"
	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/config"
	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/db"
	"github.com/example/custody/internal/ports/primary"
)

var (
	cfg    *config.Config
	logger *slog.Logger
	clk    = clock.Real()

	familyService   primary.FamilyService
	cycleService    primary.CycleService
	overrideService primary.OverrideService
	eventService    primary.EventService
	custodyService  primary.CustodyService
	briefService    primary.BriefService
	handoffService  primary.HandoffService
	logService      primary.LogService
	snapshotStore   *app.SnapshotStore

	once sync.Once
)

// Configure sets the configuration used to build the services. It must be
// called before the first service is requested; later calls are ignored.
// Without it the configuration is loaded from the working directory.
func Configure(c *config.Config) {
	if cfg == nil {
		cfg = c
	}
}

// Config returns the active configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the application logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// FamilyService returns the singleton FamilyService instance.
func FamilyService() primary.FamilyService {
	once.Do(initServices)
	return familyService
}

// CycleService returns the singleton CycleService instance.
func CycleService() primary.CycleService {
	once.Do(initServices)
	return cycleService
}

// OverrideService returns the singleton OverrideService instance.
func OverrideService() primary.OverrideService {
	once.Do(initServices)
	return overrideService
}

// EventService returns the singleton EventService instance.
func EventService() primary.EventService {
	once.Do(initServices)
	return eventService
}

// CustodyService returns the singleton CustodyService instance.
func CustodyService() primary.CustodyService {
	once.Do(initServices)
	return custodyService
}

// DashboardService returns the singleton snapshot store.
func DashboardService() primary.DashboardService {
	once.Do(initServices)
	return snapshotStore
}

// BriefService returns the singleton BriefService instance.
func BriefService() primary.BriefService {
	once.Do(initServices)
	return briefService
}

// HandoffService returns the singleton HandoffService instance.
func HandoffService() primary.HandoffService {
	once.Do(initServices)
	return handoffService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	if cfg == nil {
		cfg = loadConfig()
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Get database connection
	db.SetLogger(logger)
	if cfg.DBPath != "" {
		db.SetPath(cfg.DBPath)
	}
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	repos := app.Repositories{
		Families:  sqlite.NewFamilyRepository(database),
		Guardians: sqlite.NewGuardianRepository(database),
		Children:  sqlite.NewChildRepository(database),
		Cycles:    sqlite.NewCycleRepository(database),
		Overrides: sqlite.NewOverrideRepository(database),
		Events:    sqlite.NewEventRepository(database),
		Handoffs:  sqlite.NewHandoffRepository(database),
	}
	auditRepo := sqlite.NewAuditLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(auditRepo, repos.Guardians)

	// Create effect executor with injected repositories
	executor := app.NewEffectExecutor(repos.Children, repos.Handoffs, logWriter)

	past, future := cfg.EventWindow()
	loader := app.NewRepoSnapshotLoader(repos, app.LoaderOptions{
		FamilyID:    cfg.FamilyID,
		ViewerID:    cfg.GuardianID,
		Location:    loc,
		EventsPast:  past,
		EventsAhead: future,
	}, clk, logger)
	snapshotStore = app.NewSnapshotStore(loader, logger)

	// Create services (primary ports implementation)
	familyService = app.NewFamilyService(repos.Families, repos.Guardians, repos.Children, logWriter)
	cycleService = app.NewCycleService(repos.Cycles, repos.Overrides, repos.Guardians, logWriter)
	overrideService = app.NewOverrideService(repos.Overrides, repos.Families, repos.Guardians, logWriter, clk)
	eventService = app.NewEventService(repos, logWriter, loc)
	custodyService = app.NewCustodyService(snapshotStore, executor, clk)
	briefService = app.NewBriefService(repos.Children, repos.Events, repos.Handoffs, clk, loc)
	handoffService = app.NewHandoffService(repos.Handoffs)
	logService = app.NewLogService(auditRepo, clk)
}

// loadConfig reads the working directory's config, falling back to
// defaults when none has been written yet.
func loadConfig() *config.Config {
	dir, err := os.Getwd()
	if err != nil {
		return config.Default()
	}
	if _, err := os.Stat(config.Path(dir)); os.IsNotExist(err) {
		return config.Default()
	}
	c, err := config.LoadConfig(dir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

// Watcher returns a watcher over the shared snapshot store that hands
// each report to onReport.
func Watcher(onReport func(reconcile.Report)) *app.Watcher {
	once.Do(initServices)
	interval, err := cfg.Tick()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return app.NewWatcher(snapshotStore, clk, interval, logger, onReport)
}

// DashboardAdapter returns a new DashboardAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func DashboardAdapter() *cliadapter.DashboardAdapter {
	return DashboardAdapterWithOutput(os.Stdout)
}

// DashboardAdapterWithOutput returns a new DashboardAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func DashboardAdapterWithOutput(out io.Writer) *cliadapter.DashboardAdapter {
	once.Do(initServices)
	return cliadapter.NewDashboardAdapter(snapshotStore, out)
}

// CalendarAdapter returns a new CalendarAdapter writing to stdout.
func CalendarAdapter() *cliadapter.CalendarAdapter {
	once.Do(initServices)
	return cliadapter.NewCalendarAdapter(cycleService, os.Stdout)
}
