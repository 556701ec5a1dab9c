package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/i4/internal/config"
	"github.com/danmuck/i4/internal/observability"
	"github.com/danmuck/i4/internal/protocol/session"
	"github.com/danmuck/i4/internal/router"
	"github.com/danmuck/i4/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the upstream router and serve the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", defaultConfigPath, "config path")
	return cmd
}

func serve(ctx context.Context, cfg config.RouterConfig) error {
	logger := observability.InitLogger("i4ctl")
	gin.SetMode(gin.ReleaseMode)

	client, err := router.NewClient(cfg, session.DefaultConfig(), logger)
	if err != nil {
		return err
	}
	admin := server.New(server.Config{
		Addr:        cfg.AdminListenAddr,
		CorsOrigins: cfg.CorsOrigins,
		Token:       cfg.AdminToken,
	}, client.State(), logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(ctx) })
	g.Go(func() error { return admin.Serve(ctx) })
	return g.Wait()
}
