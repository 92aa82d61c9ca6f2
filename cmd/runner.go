package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/repositories"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/desertthunder/spotdash/internal/tasks"
	"github.com/desertthunder/spotdash/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Gateway is everything the commands need from Spotify and the assist backend.
type Gateway interface {
	ui.Gateway
	Me(ctx context.Context) (*models.User, error)
	MutatePlaylistItems(ctx context.Context, playlistID string, op models.MutationOp, uris []string) error
}

// tokenSource is implemented by gateways that refresh their own OAuth token.
type tokenSource interface {
	CurrentToken() (*oauth2.Token, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	gateway    Gateway
	engine     *tasks.Engine
	repos      *repositories.Repositories
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config       *shared.Config
	ConfigPath   string
	Gateway      Gateway
	Repositories *repositories.Repositories
	HTTPClient   *http.Client
	Logger       *log.Logger
	Output       io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		gateway:    opts.Gateway,
		repos:      opts.Repositories,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.engine = r.newEngine()
	return r
}

func (r *Runner) newEngine() *tasks.Engine {
	if r.gateway == nil {
		return nil
	}
	var recorder tasks.Recorder
	if r.repos != nil {
		recorder = r.repos.Mutations
	}
	return tasks.NewEngine(r.gateway, recorder, r.logger)
}

// SetLogger swaps the logger, e.g. for a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = r.newEngine()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, tuiCommand, searchCommand, askCommand,
		playlistCommand, playCommand, devicesCommand, locationCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireGateway fails when no authenticated Spotify client could be built.
func (r *Runner) requireGateway() error {
	if r.gateway == nil {
		return fmt.Errorf("%w: run `spotdash auth` first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) requireRepositories() error {
	if r.repos == nil {
		return fmt.Errorf("%w: database unavailable, run `spotdash setup database`", shared.ErrServiceUnavailable)
	}
	return nil
}

// saveTokens stores token in the config and writes the config file when a path is known.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// persistToken writes back a token the OAuth client refreshed during the command.
func (r *Runner) persistToken(ctx context.Context, cmd *cli.Command) error {
	ts, ok := r.gateway.(tokenSource)
	if !ok {
		return nil
	}
	token, err := ts.CurrentToken()
	if err != nil || token == nil || token.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return nil
	}
	if err := r.saveTokens(token); err != nil {
		r.logger.Warn("failed to persist refreshed token", "error", err)
		return nil
	}
	r.logger.Debug("refreshed token saved", "path", r.configPath)
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
