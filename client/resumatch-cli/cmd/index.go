package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/spf13/cobra"
)

type indexResponse struct {
	Indexed  int               `json:"indexed"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
	Failures map[string]string `json:"failures"`
}

var indexCmd = &cobra.Command{
	Use:   "index [directory]",
	Short: "Index a directory of resumes into the persistent store",
	Long:  `Asks the service to index every supported file under the given server-side directory. Without an argument the service indexes its configured data directory.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		directory := ""
		if len(args) > 0 {
			directory = args[0]
		}
		indexDirectory(directory)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func indexDirectory(directory string) {
	payload, err := json.Marshal(map[string]string{"directory": directory})
	if err != nil {
		log.Fatalf("Error creating JSON payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/index-resumes", bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result indexResponse
	decodeResponse(doRequest(req), &result)

	fmt.Printf("Indexed: %d  Skipped: %d  Failed: %d\n", result.Indexed, result.Skipped, result.Failed)
	if len(result.Failures) > 0 {
		fmt.Println("Failures:")
		paths := make([]string, 0, len(result.Failures))
		for path := range result.Failures {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Printf("  %s: %s\n", path, result.Failures[path])
		}
	}
}
