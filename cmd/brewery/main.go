package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alekLukanen/BreweryMedallion/config"
)

type exitCodeError struct {
	code int
}

func (obj exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", obj.code)
}

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}
	var exitErr exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "brewery",
		Short:         "Build the bronze, silver and gold brewery layers",
		Long:          `Fetch the brewery dataset and write its bronze, silver and gold parquet layers to object storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./brewery.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("bucket", "", "bucket the layers are written to")
	rootCmd.PersistentFlags().String("key-prefix", "", "key prefix inside the bucket")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("storage.bucket", rootCmd.PersistentFlags().Lookup("bucket"))
	_ = v.BindPFlag("storage.key_prefix", rootCmd.PersistentFlags().Lookup("key-prefix"))

	loadConfig := func() (*config.Config, error) {
		if configFile != "" {
			v.SetConfigFile(configFile)
		} else {
			v.SetConfigName("brewery")
			v.AddConfigPath(".")
		}
		return config.LoadWith(v, configFile != "")
	}

	rootCmd.AddCommand(newRunCmd(v, loadConfig))
	rootCmd.AddCommand(newPathsCmd(loadConfig))
	return rootCmd
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
