package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

type landingPage struct {
	Name    string
	Version string
}

func newHealthCommand(v *varctl) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health [url]",
		Short: "Check if the portal API is reachable",
		Long: `Check if the portal API is reachable.

The url defaults to the /api landing page of the configured listening address.
The command fails if the endpoint does not answer with 200 within the timeout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := defaultHealthUrl(v.cfg.Web.ListeningAddress)
			if len(args) == 1 {
				url = args[0]
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			page, err := checkWebEndpoint(cmd.Context(), url, timeout)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s is healthy\n", page.Name, page.Version)
			return nil
		},
	}
	cmd.Flags().Duration("timeout", 2*time.Second, "Request timeout")

	return cmd
}

func defaultHealthUrl(listeningAddress string) string {
	host, port, err := net.SplitHostPort(listeningAddress)
	if err != nil {
		return "http://localhost:8888/api"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	return fmt.Sprintf("http://%s/api", net.JoinHostPort(host, port))
}

func checkWebEndpoint(ctx context.Context, url string, timeout time.Duration) (*landingPage, error) {
	client := &http.Client{
		Timeout: timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("endpoint %s unreachable: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint %s returned status %d", url, resp.StatusCode)
	}

	var page landingPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("endpoint %s returned an invalid response: %w", url, err)
	}

	return &page, nil
}
