// Package main provides the expedition server binary: the Telnet console
// frontend, the expedition engine, and PostgreSQL persistence in one
// process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/config"
	"github.com/cory-johannsen/expedition/internal/frontend/handlers"
	"github.com/cory-johannsen/expedition/internal/frontend/telnet"
	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/expedition"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
	"github.com/cory-johannsen/expedition/internal/observability"
	"github.com/cory-johannsen/expedition/internal/scripting"
	"github.com/cory-johannsen/expedition/internal/server"
	"github.com/cory-johannsen/expedition/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting expedition server",
		zap.String("console_addr", cfg.Console.Addr()),
	)

	cryptoSrc := dice.NewCryptoSource()
	diceRoller := dice.NewRoller(cryptoSrc, logger)

	// Load content overrides; empty paths keep the built-in definitions.
	catalog, tables, loadouts := loadContent(cfg.Content, logger)

	// Connect to PostgreSQL for profiles, saves, and battle history.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	profiles := postgres.NewProfileRepository(pool.DB())
	saves := postgres.NewSaveRepository(pool.DB())
	history := postgres.NewHistoryRepository(pool.DB())

	// Initialise the Lua hook engine.
	var hooks expedition.Hooks
	var scriptMgr *scripting.Manager
	if cfg.Scripting.Dir != "" {
		scriptMgr = scripting.NewManager(diceRoller, logger)
		scriptMgr.Broadcast = func(msg string) {
			logger.Info("narration", zap.String("message", msg))
		}
		if err := loadScripts(scriptMgr, cfg.Scripting, logger); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		defer scriptMgr.Close()
		hooks = scripting.NewEventHooks(scriptMgr)
	}

	battleCfg, err := battleConfig(cfg.Game)
	if err != nil {
		logger.Fatal("invalid game configuration", zap.Error(err))
	}

	expeditions := expedition.NewManager(expedition.Config{
		GridWidth:         cfg.Game.GridWidth,
		GridHeight:        cfg.Game.GridHeight,
		GridDepth:         cfg.Game.GridDepth,
		PlacementAttempts: cfg.Game.PlacementAttempts,
		Battle:            battleCfg,
		Catalog:           catalog,
		Tables:            tables,
		Loadouts:          loadouts,
		Hooks:             hooks,
		Source:            cryptoSrc,
		Logger:            logger,
	})

	console := handlers.NewConsoleHandler(profiles, saves, history, expeditions, logger)
	console.DefaultDifficulty = item.Difficulty(cfg.Game.Difficulty)
	acceptor := telnet.NewAcceptor(cfg.Console, console, logger)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	lifecycle.Add("console", &server.FuncService{
		StartFn: func() error {
			return acceptor.ListenAndServe()
		},
		StopFn: func() {
			acceptor.Stop()
		},
	})

	logger.Info("expedition server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("console_addr", cfg.Console.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadContent resolves the item catalog, hostile name tables, and
// difficulty loadouts, preferring the configured YAML overrides.
func loadContent(cfg config.ContentConfig, logger *zap.Logger) (*item.Catalog, *npc.NameTables, map[item.Difficulty]item.Loadout) {
	var catalog *item.Catalog
	if cfg.ItemsDir != "" {
		loaded, err := item.LoadCatalog(cfg.ItemsDir)
		if err != nil {
			logger.Fatal("loading item catalog", zap.String("dir", cfg.ItemsDir), zap.Error(err))
		}
		catalog = loaded
		logger.Info("item catalog loaded", zap.String("dir", cfg.ItemsDir))
	}

	var tables *npc.NameTables
	if cfg.NamesFile != "" {
		loaded, err := npc.LoadNameTables(cfg.NamesFile)
		if err != nil {
			logger.Fatal("loading hostile name tables", zap.String("file", cfg.NamesFile), zap.Error(err))
		}
		tables = loaded
		logger.Info("hostile name tables loaded", zap.String("file", cfg.NamesFile))
	}

	var loadouts map[item.Difficulty]item.Loadout
	if cfg.LoadoutsFile != "" {
		loaded, err := item.LoadLoadouts(cfg.LoadoutsFile)
		if err != nil {
			logger.Fatal("loading difficulty loadouts", zap.String("file", cfg.LoadoutsFile), zap.Error(err))
		}
		loadouts = loaded
		logger.Info("difficulty loadouts loaded", zap.String("file", cfg.LoadoutsFile))
	}

	return catalog, tables, loadouts
}

// loadScripts loads global/ into the shared fallback VM and each level-<n>
// subdirectory into that dungeon level's VM.
func loadScripts(mgr *scripting.Manager, cfg config.ScriptingConfig, logger *zap.Logger) error {
	scriptStart := time.Now()

	globalDir := filepath.Join(cfg.Dir, "global")
	if info, err := os.Stat(globalDir); err == nil && info.IsDir() {
		if err := mgr.LoadGlobal(globalDir, cfg.InstructionLimit); err != nil {
			return fmt.Errorf("loading global scripts: %w", err)
		}
		logger.Info("global scripts loaded", zap.String("dir", globalDir))
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return fmt.Errorf("reading script root %s: %w", cfg.Dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var level int
		if _, err := fmt.Sscanf(entry.Name(), "level-%d", &level); err != nil {
			continue
		}
		dir := filepath.Join(cfg.Dir, entry.Name())
		if err := mgr.LoadLevel(level, dir, cfg.InstructionLimit); err != nil {
			return fmt.Errorf("loading level %d scripts: %w", level, err)
		}
		logger.Info("level scripts loaded", zap.Int("level", level), zap.String("dir", dir))
	}

	logger.Info("scripting engine initialized",
		zap.Duration("elapsed", time.Since(scriptStart)))
	return nil
}

// battleConfig translates the ruleset settings into the battle engine's
// configuration. Revival item use is auto-accepted: the orchestrator is
// shared across connections, so per-player confirmation stays out of it.
func battleConfig(cfg config.GameConfig) (battle.Config, error) {
	turnOrder, err := battle.ParseTurnOrderPolicy(cfg.TurnOrder)
	if err != nil {
		return battle.Config{}, fmt.Errorf("turn_order: %w", err)
	}
	loot, err := battle.ParseLootMode(cfg.Loot)
	if err != nil {
		return battle.Config{}, fmt.Errorf("loot: %w", err)
	}
	penalty, err := battle.ParsePenaltyMode(cfg.Penalty)
	if err != nil {
		return battle.Config{}, fmt.Errorf("penalty: %w", err)
	}
	return battle.Config{
		TurnOrder: turnOrder,
		Loot:      loot,
		Penalty:   penalty,
		MaxRounds: cfg.MaxRounds,
	}, nil
}
