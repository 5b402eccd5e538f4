package store

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"tankbattle/internal/game"
)

const (
	journalBuffer = 1024
	journalBatch  = 50
	flushEvery    = 5 * time.Second
)

// journaled lists the cues worth keeping. Shots and tile hits happen
// every few ticks and are left out.
var journaled = map[game.Cue]bool{
	game.CueExplosion:     true,
	game.CuePowerUpPickup: true,
	game.CueLifeUp:        true,
	game.CuePlayerRespawn: true,
	game.CueBaseDestroyed: true,
	game.CueLevelStart:    true,
	game.CueVictory:       true,
	game.CueGameOver:      true,
}

type journalEntry struct {
	ev game.Event
	at time.Time
}

// Journal records gameplay events of one match with batched background
// writes. It is a game.Listener and never blocks the tick.
type Journal struct {
	db      *DB
	matchID string
	logger  *log.Logger

	events   chan journalEntry
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	dropped int
}

// NewJournal starts the background writer for matchID
func NewJournal(db *DB, matchID string, logger *log.Logger) *Journal {
	j := &Journal{
		db:      db,
		matchID: matchID,
		logger:  logger,
		events:  make(chan journalEntry, journalBuffer),
		stop:    make(chan struct{}),
	}
	j.wg.Add(1)
	go j.writer()
	return j
}

// OnEvent enqueues e if it is journaled. A full queue drops it.
func (j *Journal) OnEvent(e game.Event) {
	if !journaled[e.Cue] {
		return
	}
	select {
	case <-j.stop:
		return
	default:
	}
	select {
	case j.events <- journalEntry{ev: e, at: time.Now().UTC()}:
	default:
		j.mu.Lock()
		j.dropped++
		j.mu.Unlock()
	}
}

// Dropped counts events lost to a full queue
func (j *Journal) Dropped() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Stop flushes what is queued and ends the writer
func (j *Journal) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	j.wg.Wait()
}

func (j *Journal) writer() {
	defer j.wg.Done()

	batch := make([]journalEntry, 0, journalBatch)
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	for {
		select {
		case e := <-j.events:
			batch = append(batch, e)
			if len(batch) >= journalBatch {
				j.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				j.flush(batch)
				batch = batch[:0]
			}
		case <-j.stop:
			batch = j.drain(batch)
			if len(batch) > 0 {
				j.flush(batch)
			}
			return
		}
	}
}

func (j *Journal) drain(batch []journalEntry) []journalEntry {
	for {
		select {
		case e := <-j.events:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

func (j *Journal) flush(batch []journalEntry) {
	tx, err := j.db.conn.Begin()
	if err != nil {
		j.logger.Error("journal: begin tx", "err", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO match_events (match_id, tick, level, cue, slot, archetype, power_up, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		j.logger.Error("journal: prepare", "err", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		ev := e.ev
		if _, err := stmt.Exec(j.matchID, int64(ev.Tick), ev.Level, ev.Cue.String(), ev.Slot,
			int(ev.Archetype), int(ev.PowerUp), e.at); err != nil {
			j.logger.Error("journal: insert", "err", err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		j.logger.Error("journal: commit", "err", err)
		return
	}
	j.logger.Debug("journal flushed", "events", len(batch))
}
