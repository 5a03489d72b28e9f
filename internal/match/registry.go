package match

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"netpong/internal/game"
	"netpong/internal/protocol"
)

var (
	ErrUnknownRoute   = errors.New("unknown match")
	ErrMatchExists    = errors.New("match already running")
	ErrInboxFull      = errors.New("match inbox full")
	ErrRegistryClosed = errors.New("registry closed")
)

// WorkerFunc runs one match until it ends or ctx is cancelled.
type WorkerFunc func(ctx context.Context, rec StartupRecord)

// MatchInfo describes a running match.
type MatchInfo struct {
	MatchID   game.MatchID
	Session   uuid.UUID
	Left      Participant
	Right     Participant
	StartedAt time.Time
}

type entry struct {
	info    MatchInfo
	inbound chan<- protocol.Message
	cancel  context.CancelFunc
}

type cmdKind uint8

const (
	cmdStart cmdKind = iota
	cmdEnd
	cmdReap
)

type command struct {
	kind  cmdKind
	rec   StartupRecord
	id    game.MatchID
	msg   protocol.Message
	entry *entry
	reply chan error
}

// Registry maps match ids to running workers. Run is the only goroutine that changes the
// table; lookups from any goroutine go through the read lock.
type Registry struct {
	mu     sync.RWMutex
	routes map[game.MatchID]*entry

	cmds    chan command
	closing chan struct{}
	spawn   WorkerFunc
	log     zerolog.Logger
	now     func() time.Time
}

func NewRegistry(spawn WorkerFunc, log zerolog.Logger) *Registry {
	return &Registry{
		routes:  make(map[game.MatchID]*entry),
		cmds:    make(chan command),
		closing: make(chan struct{}),
		spawn:   spawn,
		log:     log.With().Str("component", "registry").Logger(),
		now:     time.Now,
	}
}

// Run serves registry mutations until ctx is cancelled, then stops every worker and
// waits for them to return.
func (r *Registry) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	r.log.Info().Msg("registry started")

	for {
		select {
		case <-ctx.Done():
			r.shutdown(&wg)
			return nil
		case c := <-r.cmds:
			switch c.kind {
			case cmdStart:
				c.reply <- r.start(ctx, c.rec, &wg)
			case cmdEnd:
				c.reply <- r.end(c.id, c.msg)
			case cmdReap:
				r.reap(c.id, c.entry)
			}
		}
	}
}

// Start registers a new match and spawns its worker.
func (r *Registry) Start(ctx context.Context, rec StartupRecord) error {
	return r.call(ctx, command{kind: cmdStart, id: rec.MatchID, rec: rec})
}

// End forwards a termination request to the match worker. The entry is removed once the
// worker has returned.
func (r *Registry) End(ctx context.Context, id game.MatchID, msg protocol.EndSession) error {
	return r.call(ctx, command{kind: cmdEnd, id: id, msg: msg})
}

// Route hands msg to the worker of match id without blocking.
func (r *Registry) Route(id game.MatchID, msg protocol.Message) error {
	r.mu.RLock()
	e, ok := r.routes[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRoute, id)
	}

	select {
	case e.inbound <- msg:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInboxFull, id)
	}
}

func (r *Registry) Active(id game.MatchID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[id]
	return ok
}

// Matches lists running matches ordered by id.
func (r *Registry) Matches() []MatchInfo {
	r.mu.RLock()
	infos := lo.MapToSlice(r.routes, func(_ game.MatchID, e *entry) MatchInfo {
		return e.info
	})
	r.mu.RUnlock()

	slices.SortFunc(infos, func(a, b MatchInfo) int {
		return cmp.Compare(a.MatchID, b.MatchID)
	})
	return infos
}

func (r *Registry) call(ctx context.Context, c command) error {
	c.reply = make(chan error, 1)
	select {
	case r.cmds <- c:
	case <-r.closing:
		return ErrRegistryClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) start(parent context.Context, rec StartupRecord, wg *sync.WaitGroup) error {
	if _, ok := r.routes[rec.MatchID]; ok {
		return fmt.Errorf("%w: %d", ErrMatchExists, rec.MatchID)
	}

	ctx, cancel := context.WithCancel(parent)
	e := &entry{
		info: MatchInfo{
			MatchID:   rec.MatchID,
			Session:   rec.Session,
			Left:      rec.Left,
			Right:     rec.Right,
			StartedAt: r.now(),
		},
		inbound: rec.Inbound,
		cancel:  cancel,
	}

	r.mu.Lock()
	r.routes[rec.MatchID] = e
	r.mu.Unlock()

	wg.Add(1)
	go r.supervise(ctx, rec, e, wg)

	r.log.Info().
		Uint32("match_id", uint32(rec.MatchID)).
		Stringer("session", rec.Session).
		Msg("match registered")
	return nil
}

// supervise runs one worker and asks Run to reap it however it returns.
func (r *Registry) supervise(ctx context.Context, rec StartupRecord, e *entry, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().
				Uint32("match_id", uint32(rec.MatchID)).
				Interface("panic", p).
				Str("stack", string(debug.Stack())).
				Msg("match worker panicked")
		}
		select {
		case r.cmds <- command{kind: cmdReap, id: rec.MatchID, entry: e}:
		case <-r.closing:
		}
	}()

	r.spawn(ctx, rec)
}

func (r *Registry) end(id game.MatchID, msg protocol.Message) error {
	e, ok := r.routes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRoute, id)
	}

	select {
	case e.inbound <- msg:
	default:
		// No room for the request: cancelling ends the match the same way.
		e.cancel()
	}
	return nil
}

func (r *Registry) reap(id game.MatchID, e *entry) {
	if cur, ok := r.routes[id]; !ok || cur != e {
		return
	}
	e.cancel()

	r.mu.Lock()
	delete(r.routes, id)
	r.mu.Unlock()

	r.log.Info().Uint32("match_id", uint32(id)).Msg("match removed")
}

func (r *Registry) shutdown(wg *sync.WaitGroup) {
	close(r.closing)

	r.mu.Lock()
	for _, e := range r.routes {
		e.cancel()
	}
	r.mu.Unlock()

	wg.Wait()

	r.mu.Lock()
	clear(r.routes)
	r.mu.Unlock()
	r.log.Info().Msg("registry stopped")
}
