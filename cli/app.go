// Command execution for CLI commands.
//
// Information Hiding:
// - Data directory layout (settings, prompts, usage database)
// - Store wiring and logger setup
// - Output formatting

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/michael-borck/venture-lab-sub000/config"
	"github.com/michael-borck/venture-lab-sub000/gateway"
	"github.com/michael-borck/venture-lab-sub000/keystore"
	"github.com/michael-borck/venture-lab-sub000/prompts"
	"github.com/michael-borck/venture-lab-sub000/usage"
)

// Options holds CLI execution options.
type Options struct {
	DataDir string
	Verbose bool
}

// App wires the stores and the gateway together for command execution.
type App struct {
	Settings *config.Store
	Keys     *keystore.Store
	Prompts  *prompts.Store
	Ledger   *usage.Ledger
	Gateway  *gateway.Service
	Log      zerolog.Logger
}

// NewApp opens all stores under the data directory. An empty DataDir falls
// back to the platform config directory.
func NewApp(opts Options) (*App, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		dataDir = filepath.Join(base, "venture-lab")
	}

	log := newLogger(opts.Verbose)

	settings, err := config.OpenStore(filepath.Join(dataDir, "settings.json"))
	if err != nil {
		return nil, err
	}

	promptStore, err := prompts.OpenStore(filepath.Join(dataDir, "prompts.json"))
	if err != nil {
		return nil, err
	}

	ledger, err := usage.OpenLedger(filepath.Join(dataDir, "usage.db"))
	if err != nil {
		return nil, err
	}

	keys := keystore.New()

	return &App{
		Settings: settings,
		Keys:     keys,
		Prompts:  promptStore,
		Ledger:   ledger,
		Gateway:  gateway.New(settings, keys, ledger, log),
		Log:      log,
	}, nil
}

// Close releases the usage database.
func (a *App) Close() error {
	return a.Ledger.Close()
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
