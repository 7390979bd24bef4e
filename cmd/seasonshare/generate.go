package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/seasonshare/internal/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Scrape season listings into the data directory",
	Long: `Generate scrapes the season listing pages and writes one
{year}_{season}.json document per season, then rewrites the index.

When the data directory is empty every season since 2018 is scraped,
otherwise the two previous years through next year. Seasons that have
started and already have a document are skipped.

With --build-only nothing is scraped and only the index is rebuilt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Close()

		report, err := application.Generate(cmd.Context())
		if err != nil {
			return fmt.Errorf("generate failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "written %d, skipped %d, failed %d\n", len(report.Written), len(report.Skipped), len(report.Failed))
		for _, k := range report.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s\n", k)
		}
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "List the available years and seasons",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Close()

		idx, err := application.Index()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Index(idx))
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("build-only", false, "only rebuild the index from existing documents")
	generateCmd.Flags().String("source-url", "", "base URL of the season listing pages")
	viper.BindPFlag("build_only", generateCmd.Flags().Lookup("build-only"))
	viper.BindPFlag("source_url", generateCmd.Flags().Lookup("source-url"))
	rootCmd.AddCommand(generateCmd, indexCmd)
}
