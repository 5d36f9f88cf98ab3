package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sanjith314/gradescope-api/lib/scrapers/gradescope"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Prints the courses visible to the account, split by role.",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := loginClient(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		courses, err := client.GetCourses(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Role", "ID", "Name", "Full Name", "Semester", "Year", "Assignments", "Published"})

		appendCourses(t, "instructor", courses.Instructor)
		appendCourses(t, "student", courses.Student)

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func appendCourses(t table.Writer, role string, courses map[string]gradescope.Course) {
	for id, c := range courses {
		t.AppendRow(table.Row{
			role,
			id,
			c.Name,
			c.FullName,
			c.Semester,
			c.Year,
			strconv.Itoa(c.NumAssignments),
			strconv.Itoa(c.NumGradesPublished),
		})
	}
}
