package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/render"
	"github.com/varoOP/seasonshare/internal/sharelist"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Manage the share list",
}

var shareAddCmd = &cobra.Command{
	Use:   "add <number>",
	Short: "Add an entry of the current view to the share list",
	Long: `Add takes the number shown next to an entry by browse. Pass the same
--search keyword used for browsing so the numbers line up.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid number %q", args[0])
		}

		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		applySearch(cmd, application)
		entry, err := application.Share(cmd.Context(), n)
		if errors.Is(err, domain.ErrDuplicateEntry) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s 已在清單中\n", entry.Name)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s 已加入分享清單\n", entry.Name)
		return nil
	},
}

var shareRemoveCmd = &cobra.Command{
	Use:   "remove <number|name>",
	Short: "Remove an entry from the share list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		target := sharelist.Name(args[0])
		if n, err := strconv.Atoi(args[0]); err == nil {
			target = sharelist.Index(n - 1)
		}

		removed, err := application.Unshare(cmd.Context(), target)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "清單中沒有 %s\n", args[0])
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), render.ShareList(application.ShareList.List()))
		return nil
	},
}

var shareListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the share list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		fmt.Fprintln(cmd.OutOrStdout(), render.ShareList(application.ShareList.List()))
		return nil
	},
}

var shareClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the share list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		if err := application.ShareList.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear share list: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.ShareList(nil))
		return nil
	},
}

func init() {
	shareAddCmd.Flags().String("search", "", "keyword the numbers refer to")
	shareCmd.AddCommand(shareAddCmd, shareRemoveCmd, shareListCmd, shareClearCmd)
	rootCmd.AddCommand(shareCmd)
}
