// Package commands contains the CLI commands for the application
package commands

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

type Flags struct {
	LogLevel string
}

type Controller struct {
	Flags  *Flags
	Logger zerolog.Logger
}

func (c *Controller) deps() Dependencies {
	return DefaultDependencies(c.Logger)
}

// Generate runs one generation pass
func (c *Controller) Generate(ctx context.Context, opts GenerateOptions) error {
	return NewGenerateCommand(c.deps()).Execute(ctx, opts)
}

// Watch regenerates on every change to the generation inputs
func (c *Controller) Watch(ctx context.Context, opts WatchOptions) error {
	return NewWatchCommand(c.deps()).Execute(ctx, opts)
}

// Init writes a starter config file into the working directory
func (c *Controller) Init(ctx context.Context, force bool) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	return NewInitCommand(c.deps()).Run(ctx, dir, force)
}
