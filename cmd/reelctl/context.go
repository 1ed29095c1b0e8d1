// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/taibuivan/reel/internal/bootstrap"
	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/internal/platform/config"
)

type commandContext struct {
	verbose *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(verbose *bool) *commandContext {
	return &commandContext{verbose: verbose}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose != nil && *c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// withService opens the configured backends for the duration of fn.
func (c *commandContext) withService(cmd *cobra.Command, fn func(context.Context, *series.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	infra, err := bootstrap.Open(ctx, cfg, c.logger(cmd))
	if err != nil {
		return err
	}
	defer infra.Close()

	return fn(ctx, infra.Service(nil))
}
