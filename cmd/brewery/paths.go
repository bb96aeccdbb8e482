package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/spf13/cobra"

	"github.com/alekLukanen/BreweryMedallion/config"
	"github.com/alekLukanen/BreweryMedallion/ingestion"
	"github.com/alekLukanen/BreweryMedallion/operations"
	"github.com/alekLukanen/BreweryMedallion/warehouse"
)

func newPathsCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths <payload.json>",
		Short: "Print the object keys a run over the payload would write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level)

			source, err := ingestion.NewFileSource(logger, args[0])
			if err != nil {
				return err
			}
			records, err := source.Fetch(cmd.Context())
			if err != nil {
				logger.Error("failed reading payload", slog.String("error", errs.ErrorWithStack(err)))
				return err
			}

			keys, err := operations.PlanKeys(warehouse.DatasetFromConfig(cfg.Dataset), records)
			if err != nil {
				return err
			}

			prefix := strings.Trim(cfg.Storage.KeyPrefix, "/")
			for _, key := range keys {
				if prefix != "" {
					key = fmt.Sprintf("%s/%s", prefix, key)
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", cfg.Storage.Bucket, key); err != nil {
					return errs.Wrap(err)
				}
			}
			return nil
		},
	}

	return cmd
}
