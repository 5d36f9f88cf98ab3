package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var submissionsEmail *string

func init() {
	submissionsEmail = submissionsCmd.Flags().String("email", "", "only print the submission of this student")
	rootCmd.AddCommand(submissionsCmd)
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions <course-id> <assignment-id> [--email <student@school.edu>]",
	Short: "Prints submission download links for an assignment.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := loginClient(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Submission", "Files"})

		if *submissionsEmail != "" {
			links, err := client.GetAssignmentSubmission(cmd.Context(), *submissionsEmail, args[0], args[1])
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			t.AppendRow(table.Row{*submissionsEmail, strings.Join(links, "\n")})
		} else {
			links, err := client.GetAssignmentSubmissions(cmd.Context(), args[0], args[1])
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			for id, files := range links {
				t.AppendRow(table.Row{id, strings.Join(files, "\n")})
			}
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
