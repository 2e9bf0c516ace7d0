// Package cmd implements the resin command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"resin-sdk-go/internal/api"
	"resin-sdk-go/internal/config"
	"resin-sdk-go/internal/config/tomlstore"
	"resin-sdk-go/internal/session"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	DataDir    string
	JSONOutput bool
	Verbose    bool
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app:        app,
		JSONOutput: app.JSON,
		In:         app.In,
		Out:        app.Out,
		Err:        app.Err,
	}
}

func (p *AppProvider) init() (*App, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	level := slog.LevelWarn
	if p.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	// --data-dir wins over RESIN_DATA_DIR; both fall back to ~/.resin.
	dataDir := p.DataDir
	if dataDir == "" {
		dataDir = env.DataDir
	}
	store, err := tomlstore.New(dataDir, tomlstore.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	sess := session.New(store, session.WithLogger(logger))

	return &App{
		Settings: store,
		Paths:    store.Paths(),
		Session:  sess,
		API:      api.New(store, sess, api.WithAPIKey(env.APIKey), api.WithLogger(logger)),
		Logger:   logger,
		In:       in,
		Out:      out,
		Err:      errOut,
		JSON:     p.JSONOutput,
	}, nil
}

// Execute runs the CLI.
func Execute() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	provider := &AppProvider{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resin",
		Short: "Command-line client for the resin.io API",
		Long: `resin manages the local SDK settings and session, and talks to the
resin.io API with the stored credentials.

Settings live in <data-dir>/resin.cfg (default ~/.resin). A damaged
settings file is moved to resin.cfg.old and replaced with defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	rootCmd.PersistentFlags().StringVar(&provider.DataDir, "data-dir", "", "Settings directory (default: $RESIN_DATA_DIR or ~/.resin)")
	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&provider.Verbose, "verbose", "v", false, "Log requests and settings recovery to stderr")

	rootCmd.AddCommand(newConfigCmd(provider))
	rootCmd.AddCommand(newLoginCmd(provider))
	rootCmd.AddCommand(newRegisterCmd(provider))
	rootCmd.AddCommand(newLogoutCmd(provider))
	rootCmd.AddCommand(newWhoamiCmd(provider))
	rootCmd.AddCommand(newTokenCmd(provider))
	rootCmd.AddCommand(newAppsCmd(provider))
	rootCmd.AddCommand(newVersionCmd(provider))

	return rootCmd
}
