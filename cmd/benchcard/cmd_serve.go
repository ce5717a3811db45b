package main

import (
	"log/slog"

	"github.com/benchcard/benchcard/internal/orchestration"
	"github.com/benchcard/benchcard/internal/render"
	"github.com/benchcard/benchcard/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var (
		noBrowser bool
		origins   []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live-preview form",
		Long: `Start an HTTP server with a form that previews a chart as you edit it.

The server binds to 127.0.0.1 by default. Every request is validated from
scratch; nothing is kept between requests. Percentages default to one
decimal place unless the chart sets percentPrecision.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := render.Init(); err != nil {
				return err
			}

			precision := s.formPrecision()
			if cmd.Flags().Changed("precision") {
				precision, _ = cmd.Flags().GetInt("precision")
			}

			// The form has no use for a cache: each request is a new chart.
			s.v.Set("cache.enabled", false)
			gen, err := s.generator(true, orchestration.WithPercentPrecision(precision))
			if err != nil {
				return err
			}

			srv, err := webserver.New(webserver.Config{
				Host:           s.v.GetString("server.host"),
				Port:           s.v.GetInt("server.port"),
				NoBrowser:      noBrowser,
				Logger:         slog.Default(),
				Generator:      gen,
				AllowedOrigins: origins,
			})
			if err != nil {
				return err
			}

			ctx, stop := interruptContext(cmd)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("host", "", "Address to bind (default 127.0.0.1)")
	cmd.Flags().Int("port", 0, "Port to listen on (default 3000)")
	cmd.Flags().Int("precision", 0, "Decimal places for percentages when the chart omits percentPrecision (default 1)")
	cmd.Flags().String("exporter", "", "Image exporter: auto, browser or raster")
	cmd.Flags().String("browser", "", "Path to a Chrome or Chromium binary")
	cmd.Flags().Float64("scale", 0, "Device pixel ratio for png and svg downloads")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open a browser")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "Origins allowed to call the API (CORS)")

	return cmd
}
