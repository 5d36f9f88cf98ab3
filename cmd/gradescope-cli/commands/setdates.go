package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	setDatesRelease *string
	setDatesDue     *string
	setDatesLateDue *string
)

func init() {
	setDatesRelease = setDatesCmd.Flags().String("release", "", "release date, e.g. 2025-01-15T09:00")
	setDatesDue = setDatesCmd.Flags().String("due", "", "due date, e.g. 2025-01-22T23:59")
	setDatesLateDue = setDatesCmd.Flags().String("late-due", "", "late due date; also enables late submissions")
	rootCmd.AddCommand(setDatesCmd)
}

var setDatesCmd = &cobra.Command{
	Use:   "set-dates <course-id> <assignment-id> [--release <date>] [--due <date>] [--late-due <date>]",
	Short: "Rewrites the release/due/late-due dates of an assignment.",
	Long: `Rewrites the release/due/late-due dates of an assignment.

Dates use the 2006-01-02T15:04 layout and are interpreted in the
--timezone zone. An omitted flag clears the corresponding date.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		loc := loadedTimezone()
		release, err := parseDateFlag(*setDatesRelease, loc)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		due, err := parseDateFlag(*setDatesDue, loc)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		lateDue, err := parseDateFlag(*setDatesLateDue, loc)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		client, err := loginClient(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		ok, err := client.UpdateAssignmentDates(cmd.Context(), args[0], args[1], release, due, lateDue)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "the portal rejected the date update")
			os.Exit(1)
		}
		fmt.Println("dates updated")
	},
}

func parseDateFlag(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected 2006-01-02T15:04", s)
	}
	return t, nil
}
