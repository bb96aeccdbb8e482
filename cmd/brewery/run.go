package main

import (
	"log/slog"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alekLukanen/BreweryMedallion/config"
	"github.com/alekLukanen/BreweryMedallion/runners"
	taskpackets "github.com/alekLukanen/BreweryMedallion/taskPackets"
	"github.com/alekLukanen/BreweryMedallion/warehouse"
)

func newRunCmd(v *viper.Viper, loadConfig func() (*config.Config, error)) *cobra.Command {
	var eventData string
	var failOnLayerError bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the job once and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level)

			event := taskpackets.TriggerEvent{Source: "cli", RequestedAt: time.Now().UTC()}
			if eventData != "" {
				if err := event.Unmarshal([]byte(eventData)); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			job, err := warehouse.NewJobFromConfig(ctx, logger, cfg)
			if err != nil {
				logger.Error("failed building job", slog.String("error", errs.ErrorWithStack(err)))
				return err
			}
			defer func() {
				if err := job.Close(); err != nil {
					logger.Warn("failed closing job", slog.String("error", errs.ErrorWithStack(err)))
				}
			}()

			runner := runners.NewSingleRunRunner(logger, job, cmd.OutOrStdout(), runners.SingleRunRunnerOptions{
				FailOnLayerError: failOnLayerError,
			})
			_, code := runner.Run(ctx, event)
			if code != runners.ExitCodeOK {
				return exitCodeError{code: code}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&eventData, "event", "", "trigger event as JSON")
	flags.BoolVar(&failOnLayerError, "fail-on-layer-error", false, "exit non-zero when a layer fails")
	flags.String("source-url", "", "source API url")
	flags.String("source-file", "", "read the JSON payload from a file instead of the API")
	flags.Int("per-page", 0, "page size requested from the API")
	flags.String("storage-backend", "", "object storage backend: s3 or file")
	flags.String("storage-root", "", "root directory of the file backend")
	flags.Bool("concurrent", false, "run the three layers concurrently")
	flags.Bool("collect-silver-failures", false, "keep writing silver partitions after a failure")

	bindings := map[string]string{
		"source.url":                       "source-url",
		"source.file":                      "source-file",
		"source.per_page":                  "per-page",
		"storage.backend":                  "storage-backend",
		"storage.root":                     "storage-root",
		"pipeline.concurrent":              "concurrent",
		"pipeline.collect_silver_failures": "collect-silver-failures",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}
