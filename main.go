package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"tankbattle/internal/config"
	"tankbattle/internal/game"
	"tankbattle/internal/netsync"
	"tankbattle/internal/protocol"
	"tankbattle/internal/store"
)

func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.Level(),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "tankbattle",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("running without a database", "path", cfg.DBPath, "err", err)
		db = nil
	} else {
		defer db.Close()
	}

	switch cfg.Mode {
	case config.ModeJoin:
		err = runJoin(ctx, cfg, db, logger)
	default:
		err = runMatch(ctx, cfg, db, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("match ended", "err", err)
		os.Exit(1)
	}
}

// runMatch plays a local or hosted match until interrupted
func runMatch(ctx context.Context, cfg config.Config, db *store.DB, logger *log.Logger) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := game.NewWorld(cfg.Game, seed)
	players := cfg.Players
	if cfg.Mode == config.ModeHost {
		players = netsync.HostSlot
	}
	for slot := 1; slot <= players; slot++ {
		w.AddPlayer(slot, cfg.Nickname)
	}

	var matchID string
	if db != nil {
		w.SetLevelSource(db)
		if id, err := db.BeginMatch(cfg.Mode, seed); err != nil {
			logger.Warn("match will not be recorded", "err", err)
		} else {
			matchID = id
			journal := store.NewJournal(db, id, logger)
			defer journal.Stop()
			w.AddListener(journal)
		}
	}

	runner := game.NewRunner(w, logger)
	slots := make([]int, players)
	for i := range slots {
		slots[i] = i + 1
	}
	// input capture and rendering attach here; headless runs stay idle
	runner.SetInput(game.IdleInput{}, slots...)

	if cfg.Mode == config.ModeHost {
		var secrets netsync.SecretStore
		if db != nil {
			secrets = db
		}
		host, err := netsync.NewHost(netsync.HostConfig{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			Secrets:  secrets,
		}, runner, logger)
		if err != nil {
			return err
		}
		if err := host.Listen(); err != nil {
			return err
		}
		defer host.Close()
		go func() {
			if err := host.Serve(); err != nil {
				logger.Error("serve", "err", err)
			}
		}()
		url := netsync.JoinURL(cfg.Port)
		logger.Info("waiting for players", "join", url)
		if cfg.QR {
			if art, err := netsync.JoinQR(url); err != nil {
				logger.Warn("qr", "err", err)
			} else {
				fmt.Fprintln(os.Stderr, art)
			}
		}
	}

	go runner.Run()
	<-ctx.Done()
	runner.Stop()

	if matchID != "" {
		recordResult(db, matchID, runner.Latest(), logger)
	}
	return ctx.Err()
}

// runJoin mirrors a hosted match until the host goes away or we quit
func runJoin(ctx context.Context, cfg config.Config, db *store.DB, logger *log.Logger) error {
	addr := cfg.JoinAddr
	if addr == "" && db != nil {
		last, err := db.LastHost()
		if err != nil {
			logger.Warn("host history", "err", err)
		}
		addr = last
	}
	if addr == "" {
		return fmt.Errorf("no host address: pass -join host:port")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	c, err := netsync.Dial(dialCtx, addr, protocol.JoinRequest{
		Nickname: cfg.Nickname,
		Password: cfg.Password,
	}, cfg.Game, logger)
	if err != nil {
		return err
	}
	defer c.Close()
	if db != nil {
		if err := db.RecordHost(addr); err != nil {
			logger.Warn("host history", "err", err)
		}
	}

	err = c.Run(ctx, game.IdleInput{})
	if netsync.IsDisconnect(err) {
		logger.Info("game over: host connection lost")
	}
	return err
}

func recordResult(db *store.DB, matchID string, snap *protocol.WorldSnapshot, logger *log.Logger) {
	outcome := store.OutcomeQuit
	if snap.GameOver {
		outcome = store.OutcomeGameOver
	}
	var rows []store.MatchPlayerRow
	for i, p := range snap.Players {
		if !p.Active {
			continue
		}
		rows = append(rows, store.MatchPlayerRow{Slot: i + 1, Nickname: p.Nickname, Score: p.Score, Lives: p.Lives})
	}
	if err := db.EndMatch(matchID, snap.LevelNumber, outcome, rows); err != nil {
		logger.Warn("could not record match", "err", err)
		return
	}
	logger.Info("match recorded", "id", matchID, "level", snap.LevelNumber, "outcome", outcome)
}
