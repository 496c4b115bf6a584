package cmd

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

type statusResponse struct {
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	Documents    int64             `json:"documents"`
	Extensions   []string          `json:"extensions"`
	Capabilities map[string]bool   `json:"capabilities"`
	Health       map[string]string `json:"health"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the service status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showStatus()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus() {
	req, err := http.NewRequest(http.MethodGet, serverURL+"/api/status", nil)
	if err != nil {
		log.Fatalf("Error creating request: %v", err)
	}

	var result statusResponse
	decodeResponse(doRequest(req), &result)

	fmt.Printf("Status:  %s\n", result.Status)
	fmt.Printf("Message: %s\n", result.Message)
	fmt.Printf("Indexed documents: %d\n", result.Documents)
	if len(result.Extensions) > 0 {
		fmt.Printf("Supported files: %s\n", strings.Join(result.Extensions, " "))
	}

	if len(result.Capabilities) > 0 {
		fmt.Println("Capabilities:")
		for _, name := range sortedKeys(result.Capabilities) {
			state := "disabled"
			if result.Capabilities[name] {
				state = "enabled"
			}
			fmt.Printf("  %-10s %s\n", name, state)
		}
	}
	if len(result.Health) > 0 {
		fmt.Println("Health:")
		for _, name := range sortedKeys(result.Health) {
			fmt.Printf("  %-10s %s\n", name, result.Health[name])
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
