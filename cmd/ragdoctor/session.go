package main

import (
	"log/slog"

	"ragops/ragdoctor/pkg/config"
	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/history"
	"ragops/ragdoctor/pkg/logscan"
	"ragops/ragdoctor/pkg/smoke"
)

// session holds the components one command invocation needs.
type session struct {
	cfg    *config.Config
	doctor *diagnose.Doctor
	smoke  *smoke.Runner
	store  *history.Store
	docker *logscan.DockerSource
}

type sessionOptions struct {
	// logs connects to the Docker daemon.
	logs bool

	// adjust edits the doctor's wiring before it is built.
	adjust func(*diagnose.Config)
}

// openSession wires a doctor from cfg. Docker and history are optional: when
// they cannot be opened the session carries on without them.
func openSession(cfg *config.Config, opts sessionOptions) *session {
	s := &session{cfg: cfg}

	var inspector *logscan.Inspector
	if opts.logs {
		src, err := logscan.NewDockerSourceForHost(cfg.Logs.DockerHost)
		if err != nil {
			slog.Warn("docker unavailable, skipping log checks", "error", err)
		} else {
			s.docker = src
			inspector = logscan.NewInspector(src)
		}
	}

	dcfg := diagnose.NewConfig(cfg, inspector, nil)
	if opts.adjust != nil {
		opts.adjust(&dcfg)
	}
	s.smoke = dcfg.Smoke
	s.doctor = diagnose.New(dcfg)

	if cfg.History.Enabled {
		store, err := openHistory(cfg.History)
		if err != nil {
			slog.Warn("run history unavailable", "path", cfg.History.Path, "error", err)
		} else {
			s.store = store
			s.doctor.AddObserver(diagnose.HistoryObserver{Store: store})
			s.doctor.AddObserver(diagnose.PruneObserver{Store: store, Retention: cfg.History.Retention})
		}
	}

	return s
}

// Close releases the Docker client and history store.
func (s *session) Close() {
	if s.docker != nil {
		if err := s.docker.Close(); err != nil {
			slog.Debug("failed to close docker client", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("failed to close run history", "error", err)
		}
	}
}

func openHistory(cfg config.HistoryConfig) (*history.Store, error) {
	return history.Open(history.Config{Driver: cfg.Driver, Path: cfg.Path})
}
