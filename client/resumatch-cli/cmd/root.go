package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ResuMatch/internal/config"
	"ResuMatch/internal/discovery/etcd"
)

var (
	serverURL     string
	authToken     string
	etcdEndpoints string
)

var rootCmd = &cobra.Command{
	Use:   "resumatch-cli",
	Short: "A CLI client to interact with the resume matching service",
	Long:  `A command-line interface for indexing resume directories and matching resumes against job descriptions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		resolveServer()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI: %s", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the matcher service")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "JWT bearer token for the guarded endpoints")
	rootCmd.PersistentFlags().StringVar(&etcdEndpoints, "etcd", "", "comma-separated etcd endpoints; resolves the service address instead of --server")
}

// resolveServer replaces the server URL with an address discovered through
// etcd when --etcd is given. The first registered instance wins.
func resolveServer() {
	if etcdEndpoints == "" {
		return
	}

	sd, err := etcd.NewServiceDiscovery(config.EtcdConfig{Endpoints: strings.Split(etcdEndpoints, ",")})
	if err != nil {
		log.Fatalf("Error connecting to etcd: %v", err)
	}
	defer sd.Close()

	addrs, err := sd.Discover("matcher_service")
	if err != nil {
		log.Fatalf("Error discovering the matcher service: %v", err)
	}
	if len(addrs) == 0 {
		log.Fatalf("No matcher service instance is registered in etcd")
	}

	addr := addrs[0]
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	serverURL = addr
}

// doRequest sends the request with the bearer token attached and fails the
// command on anything but a 2xx response.
func doRequest(req *http.Request) *http.Response {
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Error contacting server: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Fatalf("Request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp
}

// decodeResponse reads the body into out and closes it.
func decodeResponse(resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Fatalf("Error decoding response: %v", err)
	}
}
