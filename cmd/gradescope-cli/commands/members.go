package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(membersCmd)
}

var membersCmd = &cobra.Command{
	Use:   "members <course-id>",
	Short: "Prints the roster of a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := loginClient(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		members, err := client.GetCourseMembers(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if members == nil {
			fmt.Fprintln(os.Stderr, "course not found or roster not visible to this account")
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name", "Email", "SID", "Role", "Submissions", "Sections"})

		for _, m := range members {
			t.AppendRow(table.Row{
				m.MemberId,
				m.FullName,
				m.Email,
				m.StudentId,
				m.Role,
				strconv.Itoa(m.NumSubmissions),
				m.Sections,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
