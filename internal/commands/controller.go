// Package commands contains the CLI commands for the application
package commands

import (
	"context"
)

type Flags struct {
	LogLevel string
}

type Controller struct {
	Flags *Flags
}

func (c *Controller) Generate(ctx context.Context) error {
	cmd := NewGenerateCommand()
	return cmd.Execute(ctx)
}

func (c *Controller) Validate(ctx context.Context) error {
	cmd := NewValidateCommand()
	return cmd.Execute(ctx)
}

func (c *Controller) Dev(ctx context.Context) error {
	cmd := NewDevCommand()
	return cmd.Execute(ctx)
}

func (c *Controller) Init(ctx context.Context) error {
	cmd := NewInitCommand()
	return cmd.Run(ctx)
}
