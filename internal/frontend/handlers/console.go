// Package handlers provides Telnet session handling and command processing
// for the expedition console: profile authentication, the expedition menu,
// and the in-run command loop.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/frontend/telnet"
	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/expedition"
	"github.com/cory-johannsen/expedition/internal/game/grid"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
	"github.com/cory-johannsen/expedition/internal/storage/postgres"
)

// ProfileStore defines the profile persistence operations required by
// ConsoleHandler.
type ProfileStore interface {
	Create(ctx context.Context, name, passphrase string) (postgres.Profile, error)
	Authenticate(ctx context.Context, name, passphrase string) (postgres.Profile, error)
}

// SaveStore defines the save-slot persistence operations required by
// ConsoleHandler.
type SaveStore interface {
	Put(ctx context.Context, profileID int64, slot int, snap expedition.Snapshot) error
	Get(ctx context.Context, profileID int64, slot int) (expedition.Snapshot, error)
	List(ctx context.Context, profileID int64) ([]postgres.SaveInfo, error)
	Delete(ctx context.Context, profileID int64, slot int) error
}

// HistoryStore defines the durable battle-history operations required by
// ConsoleHandler.
type HistoryStore interface {
	Append(ctx context.Context, profileID int64, sessionID string, outcome battle.Outcome) (string, error)
	ListByProfile(ctx context.Context, profileID int64, limit int) ([]postgres.HistoryRecord, error)
}

// menuHistoryLimit caps the records shown by the menu's history command.
const menuHistoryLimit = 20

const welcomeBanner = `
` + telnet.Bold + telnet.BrightCyan + `
 ███████╗██╗  ██╗██████╗ ███████╗██████╗ ██╗████████╗██╗ ██████╗ ███╗   ██╗
 ██╔════╝╚██╗██╔╝██╔══██╗██╔════╝██╔══██╗██║╚══██╔══╝██║██╔═══██╗████╗  ██║
 █████╗   ╚███╔╝ ██████╔╝█████╗  ██║  ██║██║   ██║   ██║██║   ██║██╔██╗ ██║
 ██╔══╝   ██╔██╗ ██╔═══╝ ██╔══╝  ██║  ██║██║   ██║   ██║██║   ██║██║╚██╗██║
 ███████╗██╔╝ ██╗██║     ███████╗██████╔╝██║   ██║   ██║╚██████╔╝██║ ╚████║
 ╚══════╝╚═╝  ╚═╝╚═╝     ╚══════╝╚═════╝ ╚═╝   ╚═╝   ╚═╝ ╚═════╝ ╚═╝  ╚═══╝` + telnet.Reset + `

` + telnet.BrightYellow + `  Descend the shifting depths. Clear the gates. Come back rich.` + telnet.Reset + `

  Type ` + telnet.Green + `login <name>` + telnet.Reset + ` to open your profile.
  Type ` + telnet.Green + `register <name>` + telnet.Reset + ` to create a profile.
  Type ` + telnet.Green + `quit` + telnet.Reset + ` to disconnect.
`

// ConsoleHandler implements telnet.SessionHandler: the profile
// authentication loop, the expedition menu, and the in-run command loop
// driving one expedition session per connection.
type ConsoleHandler struct {
	profiles    ProfileStore
	saves       SaveStore
	history     HistoryStore
	expeditions *expedition.Manager
	logger      *zap.Logger

	// DefaultDifficulty is the kit used when 'new' names none. Empty falls
	// back to medium.
	DefaultDifficulty item.Difficulty
}

// NewConsoleHandler creates a ConsoleHandler backed by the given stores and
// expedition manager.
//
// Precondition: profiles, saves, expeditions, and logger must be non-nil.
// history may be nil; durable history is then skipped.
func NewConsoleHandler(
	profiles ProfileStore,
	saves SaveStore,
	history HistoryStore,
	expeditions *expedition.Manager,
	logger *zap.Logger,
) *ConsoleHandler {
	return &ConsoleHandler{
		profiles:    profiles,
		saves:       saves,
		history:     history,
		expeditions: expeditions,
		logger:      logger,
	}
}

// HandleSession implements telnet.SessionHandler. It shows the welcome
// banner and processes authentication commands until the player opens a
// profile or quits; an opened profile drops into the expedition menu.
//
// Postcondition: Returns nil on clean quit, or an error if the session
// ended abnormally.
func (h *ConsoleHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			h.logger.Info("client quit",
				zap.String("remote_addr", addr),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil

		case "login":
			profile, err := h.handleLogin(ctx, conn, args)
			if err != nil {
				return err
			}
			if profile.ID == 0 {
				continue
			}
			h.logger.Info("profile opened",
				zap.String("remote_addr", addr),
				zap.String("profile", profile.Name),
				zap.Duration("login_time", time.Since(start)),
			)
			return h.menuLoop(ctx, conn, profile)

		case "register":
			if err := h.handleRegister(ctx, conn, args); err != nil {
				return err
			}

		case "help":
			h.showAuthHelp(conn)

		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", cmd))
		}
	}
}

// handleLogin opens a profile. The passphrase may be given inline; when
// omitted it is read with echo suppressed.
//
// Postcondition: Returns (profile, nil) on success, (postgres.Profile{},
// nil) when the error was shown to the user and the auth loop should
// continue, or (postgres.Profile{}, error) on fatal errors.
func (h *ConsoleHandler) handleLogin(ctx context.Context, conn *telnet.Conn, args []string) (postgres.Profile, error) {
	if len(args) < 1 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: login <name> [passphrase]"))
		return postgres.Profile{}, nil
	}

	name := args[0]
	var passphrase string
	if len(args) >= 2 {
		passphrase = args[1]
	} else {
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "Passphrase: ")); err != nil {
			return postgres.Profile{}, fmt.Errorf("writing passphrase prompt: %w", err)
		}
		secret, err := conn.ReadPassphrase()
		if err != nil {
			return postgres.Profile{}, fmt.Errorf("reading passphrase: %w", err)
		}
		passphrase = secret
	}

	start := time.Now()
	profile, err := h.profiles.Authenticate(ctx, name, passphrase)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrProfileNotFound):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Profile not found. Use 'register' to create one."))
			return postgres.Profile{}, nil
		case errors.Is(err, postgres.ErrInvalidCredentials):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid passphrase."))
			return postgres.Profile{}, nil
		default:
			h.logger.Error("authentication error", zap.Error(err), zap.Duration("elapsed", elapsed))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
			return postgres.Profile{}, nil
		}
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen,
		"Welcome back, %s! (profile #%d)", profile.Name, profile.ID))
	return profile, nil
}

func (h *ConsoleHandler) handleRegister(ctx context.Context, conn *telnet.Conn, args []string) error {
	if len(args) < 1 {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: register <name> [passphrase]"))
	}

	name := args[0]
	if len(name) < 3 || len(name) > 32 {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Profile name must be 3-32 characters."))
	}

	var passphrase string
	if len(args) >= 2 {
		passphrase = args[1]
	} else {
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "Choose a passphrase: ")); err != nil {
			return fmt.Errorf("writing passphrase prompt: %w", err)
		}
		secret, err := conn.ReadPassphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		passphrase = secret
	}
	if len(passphrase) < 6 {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Passphrase must be at least 6 characters."))
	}

	start := time.Now()
	profile, err := h.profiles.Create(ctx, name, passphrase)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, postgres.ErrProfileExists) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That profile name is already taken."))
			return nil
		}
		h.logger.Error("registration error", zap.Error(err), zap.Duration("elapsed", elapsed))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		return nil
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen,
		"Profile created: %s (#%d). You may now 'login'.", profile.Name, profile.ID))
	return nil
}

func (h *ConsoleHandler) showAuthHelp(conn *telnet.Conn) {
	help := telnet.Colorize(telnet.BrightWhite, "Available commands:") + "\r\n" +
		telnet.Colorize(telnet.Green, "  login <name> [passphrase]") + "    — Open your profile\r\n" +
		telnet.Colorize(telnet.Green, "  register <name> [passphrase]") + " — Create a new profile\r\n" +
		telnet.Colorize(telnet.Green, "  help") + "                         — Show this help\r\n" +
		telnet.Colorize(telnet.Green, "  quit") + "                         — Disconnect\r\n"
	_ = conn.Write([]byte(help))
}

// menuLoop processes the expedition menu for an opened profile: starting,
// loading, listing, and deleting expeditions until the client quits.
func (h *ConsoleHandler) menuLoop(ctx context.Context, conn *telnet.Conn, profile postgres.Profile) error {
	h.showMenuHelp(conn)

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorf(telnet.BrightWhite, "[%s] > ", profile.Name)); err != nil {
			return fmt.Errorf("writing menu prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading menu input: %w", err)
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			return nil

		case "new":
			difficulty := h.DefaultDifficulty
			if len(args) > 0 {
				switch strings.ToLower(args[0]) {
				case "easy":
					difficulty = item.DifficultyEasy
				case "medium":
					difficulty = item.DifficultyMedium
				case "hard":
					difficulty = item.DifficultyHard
				default:
					_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Difficulty must be easy, medium, or hard."))
					continue
				}
			}
			session, err := h.expeditions.Start(profile.Name, difficulty)
			if err != nil {
				h.logger.Error("failed to start expedition", zap.Error(err))
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Could not start the expedition. Please try again."))
				continue
			}
			if err := h.runLoop(ctx, conn, profile, session); err != nil {
				return err
			}

		case "load":
			session, err := h.handleLoad(ctx, conn, profile, args)
			if err != nil {
				return err
			}
			if session == nil {
				continue
			}
			if err := h.runLoop(ctx, conn, profile, session); err != nil {
				return err
			}

		case "saves":
			infos, err := h.saves.List(ctx, profile.ID)
			if err != nil {
				h.logger.Error("failed to list saves", zap.Error(err))
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Could not list saves."))
				continue
			}
			_ = conn.Write([]byte(RenderSaves(infos)))

		case "delete":
			h.handleDelete(ctx, conn, profile, args)

		case "history":
			if h.history == nil {
				_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "No battle records."))
				continue
			}
			records, err := h.history.ListByProfile(ctx, profile.ID, menuHistoryLimit)
			if err != nil {
				h.logger.Error("failed to list battle history", zap.Error(err))
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Could not list battle history."))
				continue
			}
			_ = conn.Write([]byte(RenderBattleRecords(records)))

		case "help":
			h.showMenuHelp(conn)

		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", cmd))
		}
	}
}

// handleLoad restores a saved expedition. A nil session with a nil error
// means the problem was shown to the user and the menu should continue.
func (h *ConsoleHandler) handleLoad(ctx context.Context, conn *telnet.Conn, profile postgres.Profile, args []string) (*expedition.Session, error) {
	slot, ok := parseSlot(conn, args)
	if !ok {
		return nil, nil
	}
	snap, err := h.saves.Get(ctx, profile.ID, slot)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrSaveNotFound):
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Slot %d is empty.", slot))
		case errors.Is(err, postgres.ErrInvalidSlot):
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Slots run %d to %d.", postgres.MinSlot, postgres.MaxSlot))
		default:
			h.logger.Error("failed to load save", zap.Int("slot", slot), zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Could not load the save."))
		}
		return nil, nil
	}
	session, err := h.expeditions.Restore(snap)
	if err != nil {
		h.logger.Error("failed to restore expedition", zap.Int("slot", slot), zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The save could not be restored."))
		return nil, nil
	}
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen,
		"Expedition restored from slot %d. Welcome back, %s.", slot, session.Player.Name))
	return session, nil
}

func (h *ConsoleHandler) handleDelete(ctx context.Context, conn *telnet.Conn, profile postgres.Profile, args []string) {
	slot, ok := parseSlot(conn, args)
	if !ok {
		return
	}
	if err := h.saves.Delete(ctx, profile.ID, slot); err != nil {
		switch {
		case errors.Is(err, postgres.ErrSaveNotFound):
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Slot %d is empty.", slot))
		case errors.Is(err, postgres.ErrInvalidSlot):
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Slots run %d to %d.", postgres.MinSlot, postgres.MaxSlot))
		default:
			h.logger.Error("failed to delete save", zap.Int("slot", slot), zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Could not delete the save."))
		}
		return
	}
	_ = conn.WriteLine(telnet.Colorf(telnet.Yellow, "Slot %d cleared.", slot))
}

func (h *ConsoleHandler) showMenuHelp(conn *telnet.Conn) {
	help := "\r\n" + telnet.Colorize(telnet.BrightWhite, "Expedition menu:") + "\r\n" +
		telnet.Colorize(telnet.Green, "  new [easy|medium|hard]") + " — Start a new expedition\r\n" +
		telnet.Colorize(telnet.Green, "  load <slot>") + "            — Resume a saved expedition\r\n" +
		telnet.Colorize(telnet.Green, "  saves") + "                  — List saved expeditions\r\n" +
		telnet.Colorize(telnet.Green, "  delete <slot>") + "          — Clear a save slot\r\n" +
		telnet.Colorize(telnet.Green, "  history") + "                — Show your battle record\r\n" +
		telnet.Colorize(telnet.Green, "  quit") + "                   — Disconnect\r\n"
	_ = conn.Write([]byte(help))
}

// runLoop drives one live expedition session until the player leaves it or
// falls. The session is always ended on return; saving snapshots it first.
func (h *ConsoleHandler) runLoop(ctx context.Context, conn *telnet.Conn, profile postgres.Profile, session *expedition.Session) error {
	defer func() {
		if err := h.expeditions.End(session.ID); err != nil && !errors.Is(err, expedition.ErrUnknownSession) {
			h.logger.Warn("failed to end session", zap.String("session", session.ID), zap.Error(err))
		}
	}()

	_ = conn.Write([]byte(RenderMap(session.Render(), session.Position().Level)))
	_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "Type 'help' for expedition commands."))

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		pos := session.Position()
		player := session.Player
		prompt := telnet.Colorf(telnet.BrightWhite, "[L%d %d,%d HP %d/%d EN %d] > ",
			pos.Level, pos.Row, pos.Col, player.Health, player.MaxHealth, player.Energy)
		if err := conn.WritePrompt(prompt); err != nil {
			return fmt.Errorf("writing run prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading run input: %w", err)
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "quit", "leave":
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "You abandon the expedition. Unsaved progress is lost."))
			return nil

		case "map", "look", "l":
			_ = conn.Write([]byte(RenderMap(session.Render(), session.Position().Level)))

		case "move", "go", "n", "s", "e", "w", "north", "south", "east", "west":
			name := cmd
			if cmd == "move" || cmd == "go" {
				if len(args) < 1 {
					_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: move <north|south|east|west>"))
					continue
				}
				name = strings.ToLower(args[0])
			}
			direction, err := grid.ParseDirection(name)
			if err != nil {
				_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown direction: %s", name))
				continue
			}
			if fell := h.handleMove(ctx, conn, profile, session, direction); fell {
				return nil
			}

		case "inspect", "examine":
			if len(args) < 1 {
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: inspect <north|south|east|west>"))
				continue
			}
			direction, err := grid.ParseDirection(strings.ToLower(args[0]))
			if err != nil {
				_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown direction: %s", args[0]))
				continue
			}
			report, err := session.Inspect(direction)
			if err != nil {
				h.writeActionError(conn, err)
				continue
			}
			_ = conn.Write([]byte(RenderHostileReport(report)))

		case "portal":
			up, ok := parseVertical(conn, args)
			if !ok {
				continue
			}
			result, err := session.EnterPortal(up)
			if err != nil {
				h.writeActionError(conn, err)
				continue
			}
			_ = conn.WriteLine(telnet.Colorf(telnet.Cyan, "You step through the portal to level %d.", result.Level))
			_ = conn.Write([]byte(RenderMap(session.Render(), result.Level)))

		case "gate", "challenge":
			up, ok := parseVertical(conn, args)
			if !ok {
				continue
			}
			if fell := h.handleGate(ctx, conn, profile, session, up); fell {
				return nil
			}

		case "bypass":
			up, ok := parseVertical(conn, args)
			if !ok {
				continue
			}
			result, err := session.BypassGate(up)
			if err != nil {
				h.writeActionError(conn, err)
				continue
			}
			_ = conn.WriteLine(telnet.Colorf(telnet.Cyan, "Your gate pass flares and the way opens. You arrive on level %d.", result.Level))
			_ = conn.Write([]byte(RenderMap(session.Render(), result.Level)))

		case "items", "inventory", "i":
			_ = conn.Write([]byte(RenderInventory(session.Player)))

		case "use":
			if len(args) < 1 {
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: use <item number>"))
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Not an item number: %s", args[0]))
				continue
			}
			result, err := session.UseItem(n - 1)
			if err != nil {
				h.writeActionError(conn, err)
				continue
			}
			_ = conn.WriteLine(RenderItemResult(result))

		case "stats", "status":
			count, multiplier := session.Streak()
			_ = conn.Write([]byte(RenderStats(session.Player, count, multiplier)))

		case "history":
			_ = conn.Write([]byte(RenderHistory(session.History())))

		case "save":
			slot, ok := parseSlot(conn, args)
			if !ok {
				continue
			}
			if err := h.saves.Put(ctx, profile.ID, slot, session.Snapshot()); err != nil {
				if errors.Is(err, postgres.ErrInvalidSlot) {
					_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Slots run %d to %d.", postgres.MinSlot, postgres.MaxSlot))
					continue
				}
				h.logger.Error("failed to save expedition", zap.Int("slot", slot), zap.Error(err))
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Could not save the expedition."))
				continue
			}
			_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Expedition saved to slot %d.", slot))

		case "help":
			h.showRunHelp(conn)

		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", cmd))
		}
	}
}

// handleMove executes one movement command, rendering whatever it turned
// into: a step, a portal notice, or a battle. Returns true when the battle
// ended the expedition.
func (h *ConsoleHandler) handleMove(ctx context.Context, conn *telnet.Conn, profile postgres.Profile, session *expedition.Session, d grid.Direction) bool {
	result, err := session.Move(d)
	if err != nil {
		h.writeActionError(conn, err)
		return false
	}
	switch {
	case result.Portal:
		_ = conn.WriteLine(telnet.Colorize(telnet.BrightCyan,
			"A portal shimmers there. 'portal up|down' to cross, 'gate up|down' to challenge its guardians."))
	case result.Battle != nil:
		h.recordOutcome(ctx, profile, session, *result.Battle)
		_ = conn.Write([]byte(RenderOutcome(*result.Battle)))
		return h.checkDefeat(conn, session)
	default:
		_ = conn.WriteLine(telnet.Colorf(telnet.White, "You move %s.", d))
	}
	return false
}

// handleGate runs a guardian gate challenge, announcing each guardian as it
// steps up. Returns true when the challenge ended the expedition.
func (h *ConsoleHandler) handleGate(ctx context.Context, conn *telnet.Conn, profile postgres.Profile, session *expedition.Session, up bool) bool {
	interlude := func(_ *character.Player, next *npc.NPC) {
		_ = conn.WriteLine(telnet.Colorf(telnet.BrightRed, "%s bars the way!", next.Name))
	}
	result, err := session.ChallengeGate(up, interlude)
	if err != nil {
		h.writeActionError(conn, err)
		return false
	}
	for _, outcome := range result.Report.Battles {
		h.recordOutcome(ctx, profile, session, outcome)
	}
	_ = conn.Write([]byte(RenderGateResult(result)))
	if result.Traversal != nil {
		_ = conn.Write([]byte(RenderMap(session.Render(), result.Traversal.Level)))
	}
	return h.checkDefeat(conn, session)
}

// recordOutcome appends one battle outcome to the durable history. Storage
// failures are logged, never surfaced to the player.
func (h *ConsoleHandler) recordOutcome(ctx context.Context, profile postgres.Profile, session *expedition.Session, outcome battle.Outcome) {
	if h.history == nil {
		return
	}
	if _, err := h.history.Append(ctx, profile.ID, session.ID, outcome); err != nil {
		h.logger.Warn("failed to record battle outcome",
			zap.String("session", session.ID),
			zap.Error(err))
	}
}

// checkDefeat reports whether the player has fallen for good and, if so,
// closes out the run with a summary.
func (h *ConsoleHandler) checkDefeat(conn *telnet.Conn, session *expedition.Session) bool {
	if session.Player.Alive() {
		return false
	}
	_ = conn.WriteLine(telnet.Colorize(telnet.BrightRed, "You have fallen. The expedition is over."))
	_ = conn.Write([]byte(RenderHistory(session.History())))
	return true
}

func (h *ConsoleHandler) writeActionError(conn *telnet.Conn, err error) {
	switch {
	case errors.Is(err, expedition.ErrExhausted):
		_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "You are too exhausted. Use an energy tonic or tread carefully."))
	case errors.Is(err, expedition.ErrNoHostile):
		_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "Nothing there."))
	case errors.Is(err, expedition.ErrNoPortal):
		_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "There is no portal in reach."))
	case errors.Is(err, expedition.ErrAtBoundary):
		_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "The dungeon does not extend that way."))
	case errors.Is(err, expedition.ErrGateLocked):
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The gate is sealed. Challenge its guardians or spend a gate pass."))
	case errors.Is(err, expedition.ErrItemUnusable):
		_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "That would have no effect right now."))
	case errors.Is(err, grid.ErrMalformedPosition):
		_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "A wall blocks the way."))
	case errors.Is(err, grid.ErrCellOccupied):
		_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "The way is blocked."))
	default:
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "%v", err))
	}
}

func (h *ConsoleHandler) showRunHelp(conn *telnet.Conn) {
	help := "\r\n" + telnet.Colorize(telnet.BrightWhite, "Expedition commands:") + "\r\n" +
		telnet.Colorize(telnet.Green, "  map") + "                — Show the level map\r\n" +
		telnet.Colorize(telnet.Green, "  n/s/e/w") + "            — Move (stepping into a hostile attacks it)\r\n" +
		telnet.Colorize(telnet.Green, "  inspect <dir>") + "      — Size up an adjacent hostile\r\n" +
		telnet.Colorize(telnet.Green, "  portal up|down") + "     — Cross an adjacent portal (gate must be cleared)\r\n" +
		telnet.Colorize(telnet.Green, "  gate up|down") + "       — Challenge the gate's guardians\r\n" +
		telnet.Colorize(telnet.Green, "  bypass up|down") + "     — Spend a gate pass to slip through\r\n" +
		telnet.Colorize(telnet.Green, "  items / use <n>") + "    — List or consume inventory items\r\n" +
		telnet.Colorize(telnet.Green, "  stats") + "              — Show your sheet and streak\r\n" +
		telnet.Colorize(telnet.Green, "  history") + "            — Show this run's battles\r\n" +
		telnet.Colorize(telnet.Green, "  save <slot>") + "        — Save the expedition (slots 1-5)\r\n" +
		telnet.Colorize(telnet.Green, "  quit") + "               — Abandon the run and return to the menu\r\n"
	_ = conn.Write([]byte(help))
}

// parseSlot reads a save-slot argument, reporting usage problems to the
// client itself.
func parseSlot(conn *telnet.Conn, args []string) (int, bool) {
	if len(args) < 1 {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "A slot number (%d-%d) is required.", postgres.MinSlot, postgres.MaxSlot))
		return 0, false
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < postgres.MinSlot || slot > postgres.MaxSlot {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Slots run %d to %d.", postgres.MinSlot, postgres.MaxSlot))
		return 0, false
	}
	return slot, true
}

// parseVertical reads an up/down argument for portal commands.
func parseVertical(conn *telnet.Conn, args []string) (up, ok bool) {
	if len(args) < 1 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Say which way: up or down."))
		return false, false
	}
	switch strings.ToLower(args[0]) {
	case "up", "u", "deeper":
		return true, true
	case "down", "d", "back":
		return false, true
	default:
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Say which way: up or down."))
		return false, false
	}
}
