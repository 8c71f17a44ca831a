// Package service turns team requests into results. The CLI and the
// Lambda handler both go through it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/config"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/logging"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/simulation"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/skill"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/store"
)

// Service holds what every request shares. Cache may be nil.
type Service struct {
	Config   *config.Config
	Catalog  *gamedata.Catalog
	Registry *skill.Registry
	Cache    *store.Cache
	Logger   *slog.Logger
}

// New loads the rules file (empty for defaults) and the game data file
// (empty for the embedded copy).
func New(rulesPath, dataPath string, logger *slog.Logger) (*Service, error) {
	cfg, err := config.Load(rulesPath)
	if err != nil {
		return nil, err
	}
	var c *gamedata.Catalog
	if dataPath == "" {
		c, err = gamedata.Default()
	} else {
		c, err = gamedata.LoadFile(dataPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load game data: %w", err)
	}
	return &Service{
		Config:   cfg,
		Catalog:  c,
		Registry: skill.DefaultRegistry(),
		Logger:   logging.OrDiscard(logger),
	}, nil
}

// Response is what a simulate request returns.
type Response struct {
	Results simulation.Results       `json:"results"`
	Simple  simulation.SimpleResults `json:"simple"`
	Events  []simulation.Event       `json:"events,omitempty"`
	Cached  bool                     `json:"cached"`
}

// Request adds run options to a team file.
type Request struct {
	Team     *config.TeamFile
	EventLog bool
}

// BadRequestError marks failures caused by the request itself.
type BadRequestError struct{ Err error }

func (e *BadRequestError) Error() string { return e.Err.Error() }
func (e *BadRequestError) Unwrap() error { return e.Err }

// IsBadRequest reports whether err was caused by the request.
func IsBadRequest(err error) bool {
	var bad *BadRequestError
	var cfgErr *simulation.ConfigError
	return errors.As(err, &bad) || errors.As(err, &cfgErr)
}

func (s *Service) iterations(tf *config.TeamFile) int {
	if tf.Iterations > 0 {
		return tf.Iterations
	}
	return s.Config.Simulation.Iterations
}

func (s *Service) runConfig(req Request) (simulation.RunConfig, error) {
	settings, members, err := req.Team.Resolve(s.Catalog)
	if err != nil {
		return simulation.RunConfig{}, &BadRequestError{Err: err}
	}
	rules := s.Config.Rules()
	return simulation.RunConfig{
		Settings: settings,
		Members:  members,
		Workers:  s.Config.Simulation.Workers,
		Options: simulation.Options{
			Iterations: s.iterations(req.Team),
			Rules:      &rules,
			Catalog:    s.Catalog,
			Registry:   s.Registry,
			Rng:        s.Config.Source(),
			Logger:     s.Logger,
			EventLog:   req.EventLog,
		},
	}, nil
}

// cacheKey covers everything a result depends on.
func (s *Service) cacheKey(req Request) (string, error) {
	return store.Key(struct {
		Data       string           `json:"data"`
		Team       *config.TeamFile `json:"team"`
		Iterations int              `json:"iterations"`
		Workers    int              `json:"workers"`
		Rules      simulation.Rules `json:"rules"`
		Rng        config.RngConfig `json:"rng"`
	}{s.Catalog.Version, req.Team, s.iterations(req.Team), s.Config.Simulation.Workers, s.Config.Rules(), s.Config.Rng})
}

// Simulate runs the Monte Carlo simulation. Requests with an event log
// run on one worker and bypass the cache.
func (s *Service) Simulate(ctx context.Context, req Request) (Response, error) {
	return s.simulate(ctx, req, s.Cache != nil && !req.EventLog)
}

func (s *Service) simulate(ctx context.Context, req Request, useCache bool) (Response, error) {
	rc, err := s.runConfig(req)
	if err != nil {
		return Response{}, err
	}

	var key string
	if useCache {
		if key, err = s.cacheKey(req); err != nil {
			return Response{}, err
		}
		var resp Response
		ok, err := s.Cache.Get(ctx, key, &resp)
		if err != nil {
			s.Logger.Warn("cache read failed", "err", err)
		} else if ok {
			s.Logger.Debug("cache hit", "key", key[:12])
			resp.Cached = true
			return resp, nil
		}
	}

	var resp Response
	if req.EventLog {
		sim, err := simulation.New(rc.Settings, rc.Members, rc.Options)
		if err != nil {
			return Response{}, err
		}
		if resp.Results, err = sim.Run(ctx); err != nil {
			return Response{}, err
		}
		resp.Events = sim.Events()
	} else if resp.Results, err = simulation.Run(ctx, rc); err != nil {
		return Response{}, err
	}
	resp.Simple = resp.Results.Simple()

	if useCache {
		if err := s.Cache.Put(ctx, key, resp); err != nil {
			s.Logger.Warn("cache write failed", "err", err)
		}
	}
	return resp, nil
}

// Expected estimates one member's day. member indexes the team file.
func (s *Service) Expected(req Request, member int) (simulation.ExpectedResult, error) {
	rc, err := s.runConfig(req)
	if err != nil {
		return simulation.ExpectedResult{}, err
	}
	if member < 0 || member >= len(rc.Members) {
		return simulation.ExpectedResult{}, &BadRequestError{
			Err: fmt.Errorf("member %d out of range, team has %d", member, len(rc.Members)),
		}
	}
	return simulation.Expected(rc.Settings, rc.Members[member], rc.Options)
}

// IV simulates the team and isolates one member by external id. Cached
// results lack the raw produce the shares are computed from, so IV always
// runs.
func (s *Service) IV(ctx context.Context, req Request, externalID string) (simulation.IVResult, error) {
	resp, err := s.simulate(ctx, req, false)
	if err != nil {
		return simulation.IVResult{}, err
	}
	iv, err := resp.Results.Isolate(externalID)
	if errors.Is(err, simulation.ErrUnknownMember) {
		return iv, &BadRequestError{Err: err}
	}
	return iv, err
}
