package cmd

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type matchRunEntry struct {
	Filename        string  `json:"filename"`
	MatchPercentage float64 `json:"match_percentage"`
}

type matchRun struct {
	RunID      string          `json:"run_id"`
	JobExcerpt string          `json:"job_excerpt"`
	MatchCount int             `json:"match_count"`
	Top        []matchRunEntry `json:"top"`
	Summary    string          `json:"summary"`
	CreatedAt  time.Time       `json:"created_at"`
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent match runs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showHistory()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
}

func showHistory() {
	url := serverURL + "/api/match-history?limit=" + strconv.Itoa(historyLimit)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		log.Fatalf("Error creating request: %v", err)
	}

	var result struct {
		Runs []matchRun `json:"runs"`
	}
	decodeResponse(doRequest(req), &result)

	if len(result.Runs) == 0 {
		fmt.Println("No match runs recorded.")
		return
	}
	for _, run := range result.Runs {
		fmt.Printf("%s  %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.RunID)
		fmt.Printf("  Job: %s\n", run.JobExcerpt)
		fmt.Printf("  Matches: %d\n", run.MatchCount)
		for _, entry := range run.Top {
			fmt.Printf("    %6.2f%%  %s\n", entry.MatchPercentage, entry.Filename)
		}
	}
}
