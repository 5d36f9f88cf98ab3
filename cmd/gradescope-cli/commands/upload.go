package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sanjith314/gradescope-api/lib/scrapers/gradescope"

	"github.com/spf13/cobra"
)

var uploadLeaderboardName *string

func init() {
	uploadLeaderboardName = uploadCmd.Flags().String("leaderboard-name", "", "display name on the assignment leaderboard")
	rootCmd.AddCommand(uploadCmd)
}

var uploadCmd = &cobra.Command{
	Use:   "upload <course-id> <assignment-id> <file>... [--leaderboard-name <name>]",
	Short: "Uploads files as a submission to an assignment.",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		files := []gradescope.UploadFile{}
		for _, path := range args[2:] {
			f, err := os.Open(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			defer f.Close()
			files = append(files, gradescope.UploadFile{
				Name:   filepath.Base(path),
				Reader: f,
			})
		}

		client, err := loginClient(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		link, err := client.UploadSubmission(cmd.Context(), args[0], args[1], files, *uploadLeaderboardName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if link == "" {
			fmt.Fprintln(os.Stderr, "the portal declined the upload")
			os.Exit(1)
		}
		fmt.Println(link)
	},
}
