package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/seasonshare/internal/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the share list as an image",
	Long: `Export downloads every cover, lays them out on one PNG and writes it to
the export directory. The share list is emptied once the image is written.
If the image can't be produced a text version is printed instead and the
list is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		out, err := application.Export(cmd.Context())
		if errors.Is(err, domain.ErrExportFailure) {
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "已匯出 %d 項到 %s\n", out.Count, out.Path)
		fmt.Fprintf(cmd.OutOrStdout(), "片名對照：%s\n", out.CaptionPath)
		if out.Failed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d 張圖片無法載入\n", out.Failed)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("export-dir", ".", "directory the image is written to")
	exportCmd.Flags().Int("hd-image-size", 600, "cover size requested from the image host")
	viper.BindPFlag("export_dir", exportCmd.Flags().Lookup("export-dir"))
	viper.BindPFlag("hd_image_size", exportCmd.Flags().Lookup("hd-image-size"))
	rootCmd.AddCommand(exportCmd)
}
