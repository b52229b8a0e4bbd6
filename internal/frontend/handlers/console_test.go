package handlers

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/expedition/internal/config"
	"github.com/cory-johannsen/expedition/internal/frontend/telnet"
	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/expedition"
	"github.com/cory-johannsen/expedition/internal/storage/postgres"
)

// mockProfileStore implements ProfileStore for testing.
type mockProfileStore struct {
	profiles    map[string]postgres.Profile
	passphrases map[string]string
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{
		profiles:    make(map[string]postgres.Profile),
		passphrases: make(map[string]string),
	}
}

func (m *mockProfileStore) Create(_ context.Context, name, passphrase string) (postgres.Profile, error) {
	if _, exists := m.profiles[name]; exists {
		return postgres.Profile{}, postgres.ErrProfileExists
	}
	profile := postgres.Profile{
		ID:        int64(len(m.profiles) + 1),
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.profiles[name] = profile
	m.passphrases[name] = passphrase
	return profile, nil
}

func (m *mockProfileStore) Authenticate(_ context.Context, name, passphrase string) (postgres.Profile, error) {
	profile, exists := m.profiles[name]
	if !exists {
		return postgres.Profile{}, postgres.ErrProfileNotFound
	}
	if m.passphrases[name] != passphrase {
		return postgres.Profile{}, postgres.ErrInvalidCredentials
	}
	return profile, nil
}

// mockSaveStore implements SaveStore over an in-memory slot map.
type mockSaveStore struct {
	snaps map[string]expedition.Snapshot
}

func newMockSaveStore() *mockSaveStore {
	return &mockSaveStore{snaps: make(map[string]expedition.Snapshot)}
}

func saveKey(profileID int64, slot int) string {
	return fmt.Sprintf("%d/%d", profileID, slot)
}

func (m *mockSaveStore) Put(_ context.Context, profileID int64, slot int, snap expedition.Snapshot) error {
	if slot < postgres.MinSlot || slot > postgres.MaxSlot {
		return postgres.ErrInvalidSlot
	}
	m.snaps[saveKey(profileID, slot)] = snap
	return nil
}

func (m *mockSaveStore) Get(_ context.Context, profileID int64, slot int) (expedition.Snapshot, error) {
	snap, ok := m.snaps[saveKey(profileID, slot)]
	if !ok {
		return expedition.Snapshot{}, postgres.ErrSaveNotFound
	}
	return snap, nil
}

func (m *mockSaveStore) List(_ context.Context, profileID int64) ([]postgres.SaveInfo, error) {
	var infos []postgres.SaveInfo
	for slot := postgres.MinSlot; slot <= postgres.MaxSlot; slot++ {
		if snap, ok := m.snaps[saveKey(profileID, slot)]; ok {
			infos = append(infos, postgres.SaveInfo{
				Slot:        slot,
				PlayerName:  snap.Player.Name,
				PlayerLevel: snap.Player.Level,
				SavedAt:     snap.TakenAt,
			})
		}
	}
	return infos, nil
}

func (m *mockSaveStore) Delete(_ context.Context, profileID int64, slot int) error {
	key := saveKey(profileID, slot)
	if _, ok := m.snaps[key]; !ok {
		return postgres.ErrSaveNotFound
	}
	delete(m.snaps, key)
	return nil
}

// mockHistoryStore implements HistoryStore over an append-only slice.
type mockHistoryStore struct {
	records []postgres.HistoryRecord
}

func (m *mockHistoryStore) Append(_ context.Context, profileID int64, sessionID string, outcome battle.Outcome) (string, error) {
	id := fmt.Sprintf("rec-%d", len(m.records)+1)
	m.records = append(m.records, postgres.HistoryRecord{
		ID:        id,
		ProfileID: profileID,
		SessionID: sessionID,
		At:        time.Now(),
		Outcome:   outcome,
	})
	return id, nil
}

func (m *mockHistoryStore) ListByProfile(_ context.Context, profileID int64, limit int) ([]postgres.HistoryRecord, error) {
	var out []postgres.HistoryRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].ProfileID == profileID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

type consoleFixture struct {
	profiles *mockProfileStore
	saves    *mockSaveStore
	history  *mockHistoryStore
	handler  *ConsoleHandler
}

func newConsoleFixture(t *testing.T) *consoleFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	manager := expedition.NewManager(expedition.Config{Logger: logger})
	f := &consoleFixture{
		profiles: newMockProfileStore(),
		saves:    newMockSaveStore(),
		history:  &mockHistoryStore{},
	}
	f.handler = NewConsoleHandler(f.profiles, f.saves, f.history, manager, logger)
	return f
}

// testServer starts a Telnet acceptor with the given handler on a random
// port and returns the listening address. The acceptor is stopped on test
// cleanup.
func testServer(t *testing.T, handler *ConsoleHandler) string {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := config.ConsoleConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := telnet.NewAcceptor(cfg, handler, logger)
	go func() { _ = acc.ListenAndServe() }()

	deadline := time.After(2 * time.Second)
	for {
		if acc.IsRunning() && acc.Addr() != "" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("acceptor did not start in time")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Cleanup(func() { acc.Stop() })
	return acc.Addr()
}

// testClient connects to addr and returns a raw TCP conn with helpers.
// It maintains a persistent read buffer across readUntil calls, discarding
// only the data up to and including the matched substring.
type testClient struct {
	conn   net.Conn
	t      *testing.T
	buffer string
}

func newTestClient(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, t: t}
}

func (tc *testClient) readUntil(substr string, timeout time.Duration) string {
	tc.t.Helper()

	if idx := strings.Index(tc.buffer, substr); idx >= 0 {
		end := idx + len(substr)
		result := tc.buffer[:end]
		tc.buffer = tc.buffer[end:]
		return result
	}

	_ = tc.conn.SetReadDeadline(time.Now().Add(timeout))
	tmp := make([]byte, 4096)
	for {
		n, err := tc.conn.Read(tmp)
		if n > 0 {
			tc.buffer += string(tmp[:n])
			if idx := strings.Index(tc.buffer, substr); idx >= 0 {
				end := idx + len(substr)
				result := tc.buffer[:end]
				tc.buffer = tc.buffer[end:]
				return result
			}
		}
		if err != nil {
			tc.t.Fatalf("reading until %q: got %q, error: %v", substr, tc.buffer, err)
		}
	}
}

func (tc *testClient) send(line string) {
	tc.t.Helper()
	_ = tc.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := tc.conn.Write([]byte(line + "\r\n"))
	require.NoError(tc.t, err)
}

// waitForBanner reads through the welcome banner and initial telnet
// negotiations until the last banner line is visible.
func (tc *testClient) waitForBanner() string {
	tc.t.Helper()
	return tc.readUntil("to disconnect.", 3*time.Second)
}

// login registers and opens a profile, reading through to the menu help.
func (tc *testClient) login(name string) {
	tc.t.Helper()
	tc.send("register " + name + " secret123")
	tc.readUntil("You may now", 2*time.Second)
	tc.send("login " + name + " secret123")
	tc.readUntil("Expedition menu:", 2*time.Second)
}

func TestWelcomeBannerContainsKeyElements(t *testing.T) {
	stripped := telnet.StripANSI(welcomeBanner)
	assert.Contains(t, stripped, "Descend the shifting depths")
	assert.Contains(t, stripped, "login")
	assert.Contains(t, stripped, "register")
	assert.Contains(t, stripped, "quit")
}

func TestHandleSession_Quit(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.send("quit")
	c.readUntil("Goodbye!", 2*time.Second)
}

func TestHandleSession_UnknownCommand(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.send("foobar")
	output := c.readUntil("available commands", 2*time.Second)
	assert.Contains(t, telnet.StripANSI(output), "foobar")
}

func TestHandleSession_RegisterAndLogin(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.send("register voyager secret123")
	output := c.readUntil("You may now", 2*time.Second)
	assert.Contains(t, telnet.StripANSI(output), "voyager")

	c.send("login voyager secret123")
	output = c.readUntil("Expedition menu:", 2*time.Second)
	assert.Contains(t, telnet.StripANSI(output), "Welcome back, voyager!")
}

func TestHandleSession_LoginUnknownProfile(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.send("login nobody secret123")
	c.readUntil("Profile not found", 2*time.Second)
}

func TestHandleSession_LoginWrongPassphrase(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.send("register voyager secret123")
	c.readUntil("You may now", 2*time.Second)
	c.send("login voyager wrongpass")
	c.readUntil("Invalid passphrase.", 2*time.Second)
}

func TestHandleSession_RegisterShortPassphrase(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.send("register voyager abc")
	c.readUntil("at least 6 characters", 2*time.Second)
}

func TestMenu_InvalidDifficulty(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new brutal")
	c.readUntil("Difficulty must be easy, medium, or hard.", 2*time.Second)
}

func TestMenu_NoSaves(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("saves")
	c.readUntil("No saved expeditions.", 2*time.Second)
}

func TestMenu_LoadEmptySlot(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("load 3")
	c.readUntil("Slot 3 is empty.", 2*time.Second)
}

func TestMenu_LoadRejectsBadSlot(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("load 9")
	c.readUntil("Slots run 1 to 5.", 2*time.Second)
}

func TestRun_NewExpeditionShowsMap(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new easy")
	output := c.readUntil("expedition commands", 3*time.Second)
	stripped := telnet.StripANSI(output)
	assert.Contains(t, stripped, "Dungeon Level 0")
	assert.Contains(t, stripped, "@ you")
}

func TestRun_StatsShowsSheet(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new easy")
	c.readUntil("expedition commands", 3*time.Second)
	c.send("stats")
	output := c.readUntil("Credits:", 2*time.Second)
	assert.Contains(t, telnet.StripANSI(output), "HP: 100/100")
}

func TestRun_ItemsListsStartingKit(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new easy")
	c.readUntil("expedition commands", 3*time.Second)
	c.send("items")
	output := c.readUntil("Phoenix", 2*time.Second)
	assert.Contains(t, telnet.StripANSI(output), "Small Potion")
}

func TestRun_UsePotionAtFullHealthRefused(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new easy")
	c.readUntil("expedition commands", 3*time.Second)
	c.send("use 1")
	c.readUntil("no effect", 2*time.Second)
}

func TestRun_SaveQuitAndLoad(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new medium")
	c.readUntil("expedition commands", 3*time.Second)
	c.send("save 2")
	c.readUntil("saved to slot 2", 2*time.Second)
	c.send("quit")
	c.readUntil("abandon the expedition", 2*time.Second)

	c.send("saves")
	output := c.readUntil("slot 2", 2*time.Second)
	assert.Contains(t, telnet.StripANSI(output), "voyager")

	c.send("load 2")
	c.readUntil("restored from slot 2", 3*time.Second)
	c.send("quit")
	c.readUntil("abandon the expedition", 2*time.Second)
}

func TestRun_DeleteSave(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new easy")
	c.readUntil("expedition commands", 3*time.Second)
	c.send("save 1")
	c.readUntil("saved to slot 1", 2*time.Second)
	c.send("quit")
	c.readUntil("abandon the expedition", 2*time.Second)

	c.send("delete 1")
	c.readUntil("Slot 1 cleared.", 2*time.Second)
	c.send("saves")
	c.readUntil("No saved expeditions.", 2*time.Second)
}

func TestRun_HistoryEmpty(t *testing.T) {
	f := newConsoleFixture(t)
	c := newTestClient(t, testServer(t, f.handler))

	c.waitForBanner()
	c.login("voyager")
	c.send("new easy")
	c.readUntil("expedition commands", 3*time.Second)
	c.send("history")
	c.readUntil("No battles fought yet.", 2*time.Second)
}
