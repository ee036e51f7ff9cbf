package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// sourceMigrationsPath is where create writes new files when -path is not set
const sourceMigrationsPath = "internal/infrastructure/migration/sql"

// command is one CLI subcommand. Commands with a nil run work on files only.
type command struct {
	usage   string
	minArgs int
	files   func(log *zap.Logger, path string, args []string)
	run     func(log *zap.Logger, m *migration.Migrator, args []string) error
}

var commands = map[string]command{
	"up":   {usage: "up", run: func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Up() }},
	"down": {usage: "down", run: func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Down() }},
	"step": {usage: "step <n>", minArgs: 1, run: func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}},
	"goto": {usage: "goto <version>", minArgs: 1, run: func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(version))
	}},
	"version": {usage: "version", run: runVersion},
	"force": {usage: "force <version>", minArgs: 1, run: func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(version)
	}},
	"drop":   {usage: "drop -confirm", run: runDrop},
	"create": {usage: "create <name> [description]", minArgs: 1, files: runCreate},
	"list":   {usage: "list", files: runList},
}

func main() {
	var (
		migrationsPath string
		configPath     string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: migrations embedded in the binary)")
	flag.StringVar(&configPath, "config", "", "Path to config file (default: ./config.toml)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if len(args) < cmd.minArgs {
		log.Fatal("Missing arguments", zap.String("usage", "migrate "+cmd.usage))
	}
	if migrationsPath != "" {
		if migrationsPath, err = filepath.Abs(migrationsPath); err != nil {
			log.Fatal("Failed to get absolute path", zap.Error(err))
		}
	}
	log.Info("Migration CLI started",
		zap.String("command", name),
		zap.String("migrations_path", migrationsPath),
	)

	if cmd.files != nil {
		cmd.files(log, migrationsPath, args)
		return
	}

	m := openMigrator(log, configPath, migrationsPath)
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := cmd.run(log, m, args); err != nil {
		log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
	}
}

func openMigrator(log *zap.Logger, configPath, migrationsPath string) *migration.Migrator {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatal("Migrations target postgres; sqlite databases are created by the server on startup",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		_ = db.Close()
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	return m
}

func runVersion(log *zap.Logger, m *migration.Migrator, _ []string) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	if !status.Applied {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version",
		zap.Uint("version", status.Version),
		zap.Bool("dirty", status.Dirty),
	)
	return nil
}

func runDrop(log *zap.Logger, m *migration.Migrator, args []string) error {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return m.Drop()
		}
	}
	log.Warn("Drop removes every table. Run 'migrate drop -confirm' to proceed.")
	return nil
}

func runCreate(log *zap.Logger, path string, args []string) {
	if path == "" {
		path = sourceMigrationsPath
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(path, args[0], description)
	if err != nil {
		log.Fatal("Failed to create migration", zap.Error(err))
	}
	log.Info("Migration created successfully",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
}

func runList(log *zap.Logger, path string, _ []string) {
	var (
		names []string
		err   error
	)
	if path == "" {
		names, err = migration.ListEmbeddedMigrations()
	} else {
		names, err = migration.ListMigrations(path)
	}
	if err != nil {
		log.Fatal("Failed to list migrations", zap.Error(err))
	}
	if len(names) == 0 {
		log.Info("No migrations found")
		return
	}

	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
}

func printUsage() {
	fmt.Println(`CRM Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version after a failed run
  drop -confirm         Drop all tables, including opportunities and customers
  create <name> [desc]  Create a new migration file pair
  list                  List migrations (embedded unless -path is set)

Flags:
  -path string          Path to migrations directory (default: embedded migrations)
  -config string        Path to config file (default: ./config.toml)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  CRM_DATABASE_HOST, CRM_DATABASE_PORT, CRM_DATABASE_USER,
  CRM_DATABASE_PASSWORD, CRM_DATABASE_DBNAME, CRM_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate create add_quote_status "Track quote status history"
  migrate version`)
}
