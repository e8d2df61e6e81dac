package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/r-type/server/internal/clock"
	"github.com/r-type/server/internal/config"
	"github.com/r-type/server/internal/core/ecs"
	"github.com/r-type/server/internal/core/event"
	"github.com/r-type/server/internal/data"
	"github.com/r-type/server/internal/lobby"
	"github.com/r-type/server/internal/rng"
	"github.com/r-type/server/internal/scripting"
	"github.com/r-type/server/internal/session"
	"github.com/r-type/server/internal/sim"
	"github.com/r-type/server/internal/snapshot"
	"github.com/r-type/server/internal/transport"
	"github.com/r-type/server/internal/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(84)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName, bindAddr string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              R-Type  Server                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(監聽: %s)\033[0m\n\n", serverName, bindAddr)
}

func printSection(title string) {
	fmt.Printf("  \033[33m── %s ──────────────────────────────\033[0m\n", title)
}

func printStat(label string, count int) {
	fmt.Printf("  %s \033[90m...\033[0m \033[32m%d\033[0m\n", label, count)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("RTYPE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. CLI args / env vars override the bind address, per the
	// external-interfaces contract's [ip port] invocation form.
	bindAddr := resolveBindAddr(cfg.Network.BindAddress, os.Args[1:])

	// 3. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, bindAddr)

	// 4. Load the enemy wave table, falling back to the hardcoded
	// single-archetype default when no data file is present.
	printSection("資料載入")
	waves := loadWaveTable(log)
	printStat("波次設定", len(waves.Entries))

	// 5. Build the ECS world, event bus, and simulation kernel. The
	// configured entity capacity is enforced at the pool itself, not just
	// documented.
	ecsWorld := ecs.NewWorldWithCapacity(cfg.Server.EntityCapacity)
	bus := event.NewBus()
	source := rng.NewSeeded(time.Now().UnixNano())
	kernel := sim.NewKernel(ecsWorld, bus, source)
	kernel.SetWaveTable(waves)

	// 6. Session manager binds peers to player entities; wire it into
	// the kernel's firing phase. The same clock instance is reused for
	// the end-of-game scoreboard so StartTime and Now() share an epoch.
	clk := clock.NewReal()
	sessions := session.NewManager(ecsWorld, kernel, clk, log)
	kernel.SetSessions(sessions)

	// 7. Wire the scripting engine — scripted enemies call back into the
	// kernel's Spawner surface and read live player counts through the
	// session manager.
	scriptsEngine, scriptErr := scripting.NewEngine(cfg.Scripting.ScriptsDir, ecsWorld, kernel, sessions, clock.NewReal(), source, log)
	if scriptErr != nil {
		log.Warn("scripting disabled: failed to load scripts", zap.Error(scriptErr))
	} else {
		defer scriptsEngine.Close()
		kernel.SetScripts(scriptsEngine)
		printOK("Lua 腳本載入完成")
	}

	// 8. Lobby manager and UDP transport.
	lobbies := lobby.NewManagerWithConfig(cfg.Lobby.MaxLobbies, cfg.Lobby.DefaultCapacity, log)

	conn, err := transport.Listen(bindAddr, log)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer conn.Close()

	fmt.Println()
	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", conn.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	// 9. Fixed-timestep game loop: poll the socket, apply control
	// packets, advance the simulation, build and send snapshots, reap
	// idle peers, until SIGINT/SIGTERM.
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	// clientLobby remembers which lobby each client last created or
	// joined, since START_GAME's wire payload carries no lobby id —
	// the requester's membership is implicit from prior CREATE/JOIN.
	clientLobby := make(map[uint32]uint32)

	gameOver := false

	lastTick := time.Now()
	for {
		select {
		case now := <-ticker.C:
			elapsed := now.Sub(lastTick)
			lastTick = now

			for _, frame := range conn.Poll() {
				handleFrame(frame, sessions, lobbies, conn, log, clientLobby)
			}

			kernel.Advance(elapsed)

			for _, frame := range snapshot.Build(ecsWorld, sessions, kernel.Tick()) {
				peer, err := net.ResolveUDPAddr("udp", frame.Addr)
				if err != nil {
					continue
				}
				conn.Send(peer, frame.Payload)
			}

			for _, peer := range sessions.ReapIdle(cfg.Network.IdleTimeout) {
				log.Debug("peer reaped", zap.String("peer", peer))
			}

			if !gameOver && allPlayersDead(ecsWorld, sessions) {
				gameOver = true
				log.Info("all players dead, broadcasting scoreboard")
				broadcastScoreboard(ecsWorld, sessions, conn, clk)
			}

		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			broadcastScoreboard(ecsWorld, sessions, conn, clk)
			log.Info("server stopped")
			return nil
		}
	}
}

// allPlayersDead reports whether at least one peer is connected and every
// peer's bound entity is dead, per spec.md §4.7/§4.9's "last player is
// dead" end-of-game trigger. No connected peers is not an end-of-game
// condition — it's the server sitting idle before anyone has joined.
func allPlayersDead(w *ecs.World, sessions *session.Manager) bool {
	anyPeer := false
	anyAlive := false
	sessions.ForEach(func(_ string, sess *session.Session) {
		anyPeer = true
		if !w.Alive(sess.EntityID) {
			return
		}
		if hp, ok := w.Health(sess.EntityID); ok && hp.Current > 0 {
			anyAlive = true
		}
	})
	return anyPeer && !anyAlive
}

// handleFrame decodes one inbound datagram and dispatches it to the
// session or lobby manager, per spec.md §4.7/§4.9. A malformed or
// unrecognized frame is dropped silently — the wire codec guarantees no
// partial frame makes it this far.
func handleFrame(frame transport.Frame, sessions *session.Manager, lobbies *lobby.Manager, conn *transport.Transport, log *zap.Logger, clientLobby map[uint32]uint32) {
	op, _, payload, err := wire.DecodeFrame(frame.Payload)
	if err != nil {
		return
	}

	switch op {
	case wire.OpHello:
		if err := wire.DecodeHello(payload); err != nil {
			return
		}
		sess, ok := sessions.HandleHello(frame.Peer)
		if !ok {
			return
		}
		conn.Send(frame.Peer, wire.EncodeWelcome(sess.ClientID))

	case wire.OpInput:
		direction, fire, err := wire.DecodeInput(payload)
		if err != nil {
			return
		}
		sessions.HandleInput(frame.Peer, direction, fire)

	case wire.OpAck:
		msgID, err := wire.DecodeAck(payload)
		if err != nil {
			return
		}
		sessions.HandleAck(frame.Peer, msgID)

	case wire.OpListLobbies:
		if err := wire.DecodeListLobbiesRequest(payload); err != nil {
			return
		}
		conn.Send(frame.Peer, wire.EncodeListLobbiesResponse(lobbies.ListWaiting()))

	case wire.OpCreateLobby:
		name, password, err := wire.DecodeCreateLobbyRequest(payload)
		if err != nil {
			return
		}
		sess, ok := sessions.Lookup(frame.Peer)
		if !ok {
			return
		}
		l, err := lobbies.Create(name, sess.ClientID, password)
		if err != nil {
			log.Warn("create lobby failed", zap.Error(err))
			return
		}
		clientLobby[sess.ClientID] = l.ID
		conn.Send(frame.Peer, wire.EncodeCreateLobbyResponse(l.ID))

	case wire.OpJoinLobby:
		lobbyID, password, err := wire.DecodeJoinLobbyRequest(payload)
		if err != nil {
			return
		}
		sess, ok := sessions.Lookup(frame.Peer)
		if !ok {
			return
		}
		_, joinErr := lobbies.Join(lobbyID, sess.ClientID, password)
		if joinErr == nil {
			clientLobby[sess.ClientID] = lobbyID
		}
		conn.Send(frame.Peer, wire.EncodeJoinLobbyResponse(joinErr == nil))

	case wire.OpStartGame:
		if err := wire.DecodeStartGameRequest(payload); err != nil {
			return
		}
		sess, ok := sessions.Lookup(frame.Peer)
		if !ok {
			return
		}
		lobbyID, ok := clientLobby[sess.ClientID]
		if !ok {
			return
		}
		if _, err := lobbies.StartGame(lobbyID, sess.ClientID); err != nil {
			log.Warn("start game failed", zap.Error(err))
		}

	default:
		sessions.Touch(frame.Peer)
	}
}

// broadcastScoreboard sends every connected peer a final SCOREBOARD
// frame built from each player entity's accrued Score and elapsed
// survival time, per spec.md §4.7's end-of-game contract.
func broadcastScoreboard(w *ecs.World, sessions *session.Manager, conn *transport.Transport, clk clock.Clock) {
	var entries []wire.ScoreEntry
	sessions.ForEach(func(_ string, sess *session.Session) {
		tag, ok := w.PlayerTag(sess.EntityID)
		if !ok {
			return
		}
		points := 0
		if score, ok := w.Score(sess.EntityID); ok {
			points = score.Points
		}
		entries = append(entries, wire.ScoreEntry{
			PlayerID:     tag.ClientID,
			Score:        uint32(points),
			TimeSurvived: float32(clk.Now() - sess.StartTime),
		})
	})
	payload := wire.EncodeScoreboard(entries)
	sessions.ForEach(func(addr string, _ *session.Session) {
		peer, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			return
		}
		conn.Send(peer, payload)
	})
}

// resolveBindAddr applies the external-interfaces override order: CLI
// args win over RTYPE_SERVER_IP/RTYPE_SERVER_PORT env vars, which win
// over the config file's default.
func resolveBindAddr(configured string, args []string) string {
	ip, port := "", ""
	if host, p, err := net.SplitHostPort(configured); err == nil {
		ip, port = host, p
	}
	if v := os.Getenv("RTYPE_SERVER_IP"); v != "" {
		ip = v
	}
	if v := os.Getenv("RTYPE_SERVER_PORT"); v != "" {
		port = v
	}
	if len(args) >= 1 {
		ip = args[0]
	}
	if len(args) >= 2 {
		port = args[1]
	}
	if ip == "" {
		ip = "127.0.0.1"
	}
	if port == "" {
		port = "4242"
	}
	if _, err := strconv.Atoi(port); err != nil {
		port = "4242"
	}
	return net.JoinHostPort(ip, port)
}

// loadWaveTable reads the configured wave data file, falling back to
// the kernel's hardcoded default archetype when absent — a server
// started without a wave config file still runs.
func loadWaveTable(log *zap.Logger) *data.WaveTable {
	path := "data/waves.yaml"
	if p := os.Getenv("RTYPE_WAVES"); p != "" {
		path = p
	}
	table, err := data.LoadWaveTable(path)
	if err != nil {
		log.Info("using default wave table", zap.Error(err))
		return data.DefaultWaveTable()
	}
	return table
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
