package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/varoOP/seasonshare/internal/app"
	"github.com/varoOP/seasonshare/internal/domain"
	"github.com/varoOP/seasonshare/internal/render"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Show the current season from the remembered position",
	Long: `Browse restores the last selection, weekday filter and position and
prints the visible catalog. Use --search to narrow the view by name or story.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		applySearch(cmd, application)
		printView(cmd, application)
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <year> [season]",
	Short: "Select a year and season",
	Long: `Select switches to another season. Without a season the first season
of the year is used. The list starts from the top.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		if len(args) == 2 {
			season := domain.Season(args[1])
			if !season.Valid() {
				return fmt.Errorf("invalid season %q (must be one of 冬, 春, 夏, 秋)", args[1])
			}
			err = application.Coordinator.SelectSeason(cmd.Context(), args[0], season)
		} else {
			err = application.Coordinator.SelectYear(cmd.Context(), args[0])
		}
		if err != nil {
			return fmt.Errorf("select failed: %w", err)
		}

		applySearch(cmd, application)
		printView(cmd, application)
		return nil
	},
}

var weekdayCmd = &cobra.Command{
	Use:   "weekday <一|二|三|四|五|六|日|全部>",
	Short: "Filter the catalog by premiere weekday",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !validWeekday(args[0]) {
			return fmt.Errorf("invalid weekday %q", args[0])
		}

		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		if err := application.Coordinator.SetWeekday(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to set weekday: %w", err)
		}

		applySearch(cmd, application)
		printView(cmd, application)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search the current season by name or story",
	Long:  `Search matches the keyword case-insensitively against names and stories. The keyword is not remembered.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		application.Coordinator.SetKeyword(strings.Join(args, " "))
		printView(cmd, application)
		return nil
	},
}

var scrollCmd = &cobra.Command{
	Use:   "scroll <offset>",
	Short: "Move the remembered list position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.Atoi(args[0])
		if err != nil || offset < 0 {
			return fmt.Errorf("invalid offset %q", args[0])
		}

		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		if err := application.Coordinator.SetScroll(cmd.Context(), offset); err != nil {
			return fmt.Errorf("failed to set position: %w", err)
		}

		printView(cmd, application)
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Go back to the top and forget the remembered position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, done, err := startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		if err := application.Coordinator.BackToTop(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reset position: %w", err)
		}

		printView(cmd, application)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{browseCmd, selectCmd, weekdayCmd, scrollCmd, topCmd} {
		c.Flags().Int("limit", 20, "number of entries to show")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{browseCmd, selectCmd, weekdayCmd} {
		c.Flags().String("search", "", "keyword to narrow the view")
	}
	searchCmd.Flags().Int("limit", 20, "number of entries to show")
	rootCmd.AddCommand(searchCmd)
}

func validWeekday(w string) bool {
	if w == domain.WeekdayAll || w == "天" {
		return true
	}
	for _, d := range domain.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

func applySearch(cmd *cobra.Command, application *app.App) {
	if f := cmd.Flags().Lookup("search"); f != nil && f.Value.String() != "" {
		application.Coordinator.SetKeyword(f.Value.String())
	}
}

func printView(cmd *cobra.Command, application *app.App) {
	limit, _ := cmd.Flags().GetInt("limit")
	c := application.Coordinator

	visible := c.Visible()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Header(c.View(), len(visible), len(c.Entries()), c.GeneratedAt().Time))
	fmt.Fprintln(out)

	if err := c.LoadErr(); err != nil {
		fmt.Fprintln(out, "無法載入資料，請稍後再試")
		return
	}
	fmt.Fprintln(out, render.Cards(visible, c.Scroll(), limit, application.ShareList.Contains))
}
