// Package postgen runs the optional command configured to follow generation, such as a
// formatter or a git add.
package postgen

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
)

var (
	// ErrNoCommand is returned when the command line is empty
	ErrNoCommand = errors.New("no post-generation command configured")
	// ErrTimeout is returned when the command outlives its timeout
	ErrTimeout = errors.New("post-generation command timed out")
)

// Config describes the command to run
type Config struct {
	WorkingDirectory string
	// Command is a shell-style command line, e.g. `npx prettier --write "src/**/*.ts"`
	Command string
	// Arguments are appended to Command, split with the same quoting rules
	Arguments string
	// Timeout bounds the command when waiting; zero means no limit
	Timeout time.Duration
	// Wait blocks until the command exits; otherwise it is started and left running
	Wait bool
}

// Argv splits the command line into program and arguments
func (c Config) Argv() ([]string, error) {
	argv, err := shellquote.Split(c.Command)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid command %q", c.Command)
	}
	if strings.TrimSpace(c.Arguments) != "" {
		extra, err := shellquote.Split(c.Arguments)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid arguments %q", c.Arguments)
		}
		argv = append(argv, extra...)
	}
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	return argv, nil
}

// Runner executes post-generation commands
type Runner struct {
	logger zerolog.Logger
	output io.Writer
}

// New creates a runner
func New(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// WithOutput streams the command's stdout and stderr to w instead of logging them
func (r *Runner) WithOutput(w io.Writer) *Runner {
	r.output = w
	return r
}

// Run executes the command described by cfg
func (r *Runner) Run(ctx context.Context, cfg Config) error {
	argv, err := cfg.Argv()
	if err != nil {
		return err
	}
	log := r.logger.With().Strs("argv", argv).Str("dir", cfg.WorkingDirectory).Logger()

	if !cfg.Wait {
		// #nosec G204 -- the command comes from the user's own configuration
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Dir = cfg.WorkingDirectory
		if err := cmd.Start(); err != nil {
			return errors.Wrapf(err, "failed to start %s", argv[0])
		}
		log.Info().Int("pid", cmd.Process.Pid).Msg("started post-generation command")
		return errors.Wrap(cmd.Process.Release(), "failed to release process")
	}

	runCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	// #nosec G204 -- the command comes from the user's own configuration
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = cfg.WorkingDirectory

	var captured bytes.Buffer
	if r.output != nil {
		cmd.Stdout = r.output
		cmd.Stderr = r.output
	} else {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	}

	start := time.Now()
	err = cmd.Run()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return errors.WithHint(
				errors.Wrapf(ErrTimeout, "%s after %s", argv[0], cfg.Timeout),
				"raise postGeneration.timeout or set it to 0 to disable the limit",
			)
		}
		log.Error().Err(err).Str("output", captured.String()).Msg("post-generation command failed")
		return errors.Wrapf(err, "post-generation command %s failed", argv[0])
	}

	log.Info().Dur("took", time.Since(start)).Msg("post-generation command completed")
	if out := strings.TrimSpace(captured.String()); out != "" {
		log.Debug().Str("output", out).Msg("post-generation command output")
	}
	return nil
}
