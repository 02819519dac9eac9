package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/critter/internal/config"
	"github.com/l1jgo/critter/internal/core/event"
	coresys "github.com/l1jgo/critter/internal/core/system"
	"github.com/l1jgo/critter/internal/data"
	"github.com/l1jgo/critter/internal/persist"
	"github.com/l1jgo/critter/internal/scripting"
	"github.com/l1jgo/critter/internal/system"
	"github.com/l1jgo/critter/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      critter · creature tracker daemon    \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mnode:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(3, 42-len(label)-len(numStr))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Daemon ────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg := config.Default()
	cfgPath := "config/critterd.toml"
	if p := os.Getenv("CRITTER_CONFIG"); p != "" {
		cfgPath = p
	}
	if _, err := os.Stat(cfgPath); err == nil {
		if cfg, err = config.Load(cfgPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Static data
	printSection("data")
	creatures, err := data.LoadCreatureTable(cfg.Data.CreatureList)
	if err != nil {
		return fmt.Errorf("creature list: %w", err)
	}
	creatures.SetNullType(world.TypeID(cfg.Tracker.NullType))
	printStat("creature templates", creatures.Count())

	spawns, err := data.LoadSpawnList(cfg.Data.SpawnList)
	if err != nil {
		return fmt.Errorf("spawn list: %w", err)
	}
	printStat("spawn entries", len(spawns))

	lua, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	printOK("lua scripts loaded")
	fmt.Println()

	// 4. Tracker and spawner
	bus := event.NewBus()
	tracker := world.NewTracker(
		world.WithLogger(log.Named("tracker")),
		world.WithTypeRules(creatures),
		world.WithPlayerFaction(world.FactionID(cfg.Tracker.PlayerFaction)),
		world.WithEvents(bus),
	)
	seed := uint64(cfg.Server.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	spawner := system.NewSpawner(tracker, creatures, lua, bus, seed, log.Named("spawner"))
	kills := system.NewKillCounter(bus)

	// 5. Snapshot store
	printSection("snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := coresys.NewRunner()
	var persistence *system.PersistenceSystem
	if store != nil {
		persistence = system.NewPersistenceSystem(tracker, store, spawner, runner.Turns, cfg.Snapshot.IntervalTicks, log.Named("persist"))
	}

	restored := false
	if persistence != nil {
		if restored, err = persistence.Restore(ctx); err != nil {
			return err
		}
	}
	if restored {
		printStat("creatures restored", tracker.Size())
	} else {
		printStat("creatures spawned", spawner.SpawnList(spawns))
	}
	fmt.Println()

	// 6. Systems
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewTurnSystem(tracker, lua, cfg.Tracker.SearchRadius, log.Named("turn")))
	runner.Register(system.NewDeathSystem(tracker, log.Named("death")))
	if persistence != nil {
		runner.Register(persistence)
	}
	runner.Register(system.NewCleanupSystem(tracker, cfg.Server.DebugChecks, log.Named("cleanup")))

	// 7. Game loop
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	printSection("ready")
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Server.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runner.Tick(cfg.Server.TickRate)
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutting down",
		zap.Uint64("turns", runner.Turns()),
		zap.Int("tracked", tracker.Size()),
		zap.Int("kills", kills.Total()))

	// The loop goroutine has exited; the tracker is ours again.
	if persistence != nil {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer saveCancel()
		if err := persistence.Save(saveCtx); err != nil {
			log.Error("final snapshot failed", zap.Error(err))
		}
	}
	log.Info("critterd stopped")
	return nil
}

// openStore builds the configured snapshot backend. A nil store means
// snapshots are disabled.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (persist.Store, func(), error) {
	switch cfg.Snapshot.Backend {
	case config.BackendFile:
		printOK(fmt.Sprintf("file snapshots at %s", cfg.Snapshot.Path))
		return persist.NewFileStore(cfg.Snapshot.Path, log.Named("snapshot")), func() {}, nil
	case config.BackendPostgres:
		db, err := persist.Open(ctx, cfg.Database, log.Named("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		printOK("PostgreSQL connected, migrations applied")
		return persist.NewSnapshotRepo(db, cfg.Snapshot.Keep), db.Close, nil
	default:
		printOK("snapshots disabled")
		return nil, func() {}, nil
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
