package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/seasonshare/internal/app"
	"github.com/varoOP/seasonshare/internal/config"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seasonshare",
	Short: "Browse the seasonal anime catalog and share picks as an image",
	Long: `SeasonShare browses the seasonal anime catalog by year and season,
filters it by weekday and keyword, and keeps a share list that can be
exported as a single image.

Selection, weekday filter, list position and the share list are remembered
between invocations.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.seasonshare.yaml)")
	rootCmd.PersistentFlags().String("data-url", "", "base URL serving {year}_{season}.json documents")
	rootCmd.PersistentFlags().String("data-dir", "./data", "directory holding generated season documents")
	rootCmd.PersistentFlags().String("index-path", "", "available seasons index (default is <data-dir>/index.yaml)")
	rootCmd.PersistentFlags().String("db-dir", ".", "directory of the preference database")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "keep preferences in memory only")

	// Bind flags to viper
	viper.BindPFlag("data_url", rootCmd.PersistentFlags().Lookup("data-url"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("index_path", rootCmd.PersistentFlags().Lookup("index-path"))
	viper.BindPFlag("db_dir", rootCmd.PersistentFlags().Lookup("db-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("ephemeral", rootCmd.PersistentFlags().Lookup("ephemeral"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Environment variables
	viper.SetEnvPrefix("SEASONSHARE")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		return
	}

	if cfgFile != "" {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(home + string(os.PathSeparator) + ".seasonshare.yaml")
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newApp initializes the application without starting a session
func newApp() (*app.App, error) {
	application, err := app.NewApp(app.WithEphemeral(viper.GetBool("ephemeral")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

// startSession initializes the application and restores the session.
// The returned close func must be called when the command is done.
func startSession(ctx context.Context) (*app.App, func(), error) {
	application, err := newApp()
	if err != nil {
		return nil, nil, err
	}
	if err := application.Start(ctx); err != nil {
		_ = application.Close()
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}
	return application, func() { _ = application.Close() }, nil
}
