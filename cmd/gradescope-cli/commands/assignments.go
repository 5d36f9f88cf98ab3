package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(assignmentsCmd)
}

var assignmentsCmd = &cobra.Command{
	Use:   "assignments <course-id>",
	Short: "Prints the assignments of a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := loginClient(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		assignments, err := client.GetAssignments(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name", "Release", "Due", "Late Due", "Status", "Grade"})

		for _, a := range assignments {
			grade := ""
			if a.Grade != "" {
				grade = a.Grade + " / " + a.MaxGrade
			}
			t.AppendRow(table.Row{
				a.AssignmentId,
				a.Name,
				formatDate(a.ReleaseDate),
				formatDate(a.DueDate),
				formatDate(a.LateDueDate),
				a.SubmissionStatus,
				grade,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
