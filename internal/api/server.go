package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"netpong/internal/game"
	"netpong/internal/match"
)

// Lister is the read side of the match registry.
type Lister interface {
	Matches() []match.MatchInfo
}

type Player struct {
	ID   game.PlayerID `json:"id"`
	Addr string        `json:"addr"`
}

type Match struct {
	MatchID   game.MatchID `json:"match_id"`
	Session   string       `json:"session"`
	Left      Player       `json:"left"`
	Right     Player       `json:"right"`
	StartedAt time.Time    `json:"started_at"`
}

type Server struct {
	matches Lister
	log     zerolog.Logger
}

func NewServer(matches Lister, log zerolog.Logger) *Server {
	return &Server{matches: matches, log: log.With().Str("component", "api").Logger()}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/matches", s.GetMatches)
	mux.HandleFunc("/health", s.Health)
	return mux
}

func (s *Server) GetMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := lo.Map(s.matches.Matches(), func(m match.MatchInfo, _ int) Match {
		return Match{
			MatchID:   m.MatchID,
			Session:   m.Session.String(),
			Left:      player(m.Left),
			Right:     player(m.Right),
			StartedAt: m.StartedAt.UTC(),
		}
	})
	s.log.Debug().Int("matches", len(list)).Msg("list matches")

	writeJSON(w, list)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("API server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func player(p match.Participant) Player {
	out := Player{ID: p.ID}
	if p.Addr != nil {
		out.Addr = p.Addr.String()
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
