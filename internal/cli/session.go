package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/rowkeeper/internal/behavior"
	"github.com/mesh-intelligence/rowkeeper/internal/paths"
	"github.com/mesh-intelligence/rowkeeper/internal/sqlite"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// session is an attached database plus the configuration it came from.
// Commands open one, use it, and close it.
type session struct {
	v        *viper.Viper
	settings settings
	dataDir  string
	backend  *sqlite.Backend
	logger   *slog.Logger
	identity behavior.Identity
}

// openSession resolves directories and config, then attaches the database.
func openSession(cmd *cobra.Command) (*session, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, userError(err)
	}
	s, err := readSettings(v)
	if err != nil {
		return nil, userError(err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), firstNonEmpty(flags.logLevel, s.LogLevel))
	if err != nil {
		return nil, userError(err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, s.DataDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	cfg := s.databaseConfig(dataDir)
	if err := cfg.Validate(); err != nil {
		return nil, userError(fmt.Errorf("invalid config: %w", err))
	}
	backend := sqlite.NewBackend(sqlite.WithLogger(logger))
	if err := backend.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach database: %w", err))
	}
	logger.Debug("session opened", "config_dir", configDir, "data_dir", dataDir)

	return &session{
		v:        v,
		settings: s,
		dataDir:  dataDir,
		backend:  backend,
		logger:   logger,
		identity: behavior.StaticIdentity{ID: firstNonEmpty(flags.identity, s.Identity)},
	}, nil
}

func (s *session) close() error {
	return s.backend.Detach()
}

// mapper returns the mapper for table with its configured behaviors.
func (s *session) mapper(table string) (types.Mapper, error) {
	behaviors, err := tableBehaviors(s.v, table, s.identity)
	if err != nil {
		return nil, userError(err)
	}
	m, err := s.backend.Mapper(table, behaviors...)
	if err != nil {
		if errors.Is(err, types.ErrTableNotFound) {
			return nil, userError(fmt.Errorf("unknown table %q", table))
		}
		return nil, sysError(err)
	}
	return m, nil
}

// withSession opens a session around fn.
func withSession(cmd *cobra.Command, fn func(s *session) error) (err error) {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = sysError(fmt.Errorf("detach database: %w", cerr))
		}
	}()
	return fn(s)
}

// newLogger returns a text logger on w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// operationError classifies a mapper error for the exit code.
func operationError(err error) error {
	var missing *types.MissingKeyError
	switch {
	case errors.Is(err, types.ErrUnknownColumn),
		errors.Is(err, types.ErrInvalidCriteria),
		errors.Is(err, types.ErrCompositeKey),
		errors.Is(err, types.ErrNoPrimaryKey),
		errors.Is(err, types.ErrInvalidValue),
		errors.As(err, &missing):
		return userError(err)
	}
	return sysError(err)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
