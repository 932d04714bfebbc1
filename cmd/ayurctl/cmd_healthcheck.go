package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayurwell/portal/pkg/healthcheck"
)

var (
	hcRetry      int
	hcRetryDelay time.Duration
	hcExpect     string
	hcFormat     string
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck <url>",
	Short: "Query a running server's health endpoint",
	Long: `Fetches a /health endpoint of the ops server and fails when the reported
status is worse than --expect. Suitable for container health probes.`,
	Example: "  ayurctl healthcheck http://localhost:9090/health --retry 3",
	Args:    cobra.ExactArgs(1),
	RunE:    runHealthcheck,
}

func init() {
	healthcheckCmd.Flags().IntVar(&hcRetry, "retry", 0, "number of retries on failure")
	healthcheckCmd.Flags().DurationVar(&hcRetryDelay, "retry-delay", time.Second, "delay between retries")
	healthcheckCmd.Flags().StringVar(&hcExpect, "expect", string(healthcheck.StatusHealthy), "worst acceptable status: healthy, degraded")
	healthcheckCmd.Flags().StringVar(&hcFormat, "format", "text", "output format: text, json")
}

// healthReport mirrors the JSON body of the health endpoint
type healthReport struct {
	Status        healthcheck.Status `json:"status"`
	Version       string             `json:"version"`
	Timestamp     time.Time          `json:"timestamp"`
	TotalDuration float64            `json:"total_duration_ms"`
	Checks        []struct {
		Name     string             `json:"name"`
		Status   healthcheck.Status `json:"status"`
		Critical bool               `json:"critical"`
		Message  string             `json:"message"`
		Duration float64            `json:"duration_ms"`
	} `json:"checks"`
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := args[0]
	client := &http.Client{Timeout: timeout}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 0; attempt <= hcRetry; attempt++ {
		if attempt > 0 {
			log.Debug("Retrying health check", zap.Int("attempt", attempt), zap.Duration("delay", hcRetryDelay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(hcRetryDelay):
			}
		}

		report, raw, err := fetchHealth(ctx, client, url)
		if err != nil {
			lastErr = err
			log.Debug("Health check request failed", zap.Error(err))
			continue
		}

		if err := printHealth(cmd.OutOrStdout(), report, raw); err != nil {
			return err
		}
		if !acceptable(report.Status, healthcheck.Status(hcExpect)) {
			return fmt.Errorf("service is %s", report.Status)
		}
		return nil
	}

	return fmt.Errorf("health check failed after %d attempts: %w", hcRetry+1, lastErr)
}

func fetchHealth(ctx context.Context, client *http.Client, url string) (*healthReport, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	var report healthReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if report.Status == "" {
		report.Status = healthcheck.StatusUnhealthy
	}
	return &report, raw, nil
}

func printHealth(w io.Writer, report *healthReport, raw []byte) error {
	if hcFormat == "json" {
		_, err := fmt.Fprintln(w, string(raw))
		return err
	}

	fmt.Fprintf(w, "Status: %s\n", report.Status)
	if report.Version != "" {
		fmt.Fprintf(w, "Version: %s\n", report.Version)
	}
	fmt.Fprintf(w, "Duration: %.0fms\n", report.TotalDuration)
	for _, check := range report.Checks {
		fmt.Fprintf(w, "  %s: %s", check.Name, check.Status)
		if check.Message != "" {
			fmt.Fprintf(w, " (%s)", check.Message)
		}
		fmt.Fprintf(w, " [%.0fms]\n", check.Duration)
	}
	return nil
}

func acceptable(got, expect healthcheck.Status) bool {
	rank := map[healthcheck.Status]int{
		healthcheck.StatusHealthy:   0,
		healthcheck.StatusDegraded:  1,
		healthcheck.StatusUnhealthy: 2,
	}
	g, ok := rank[got]
	if !ok {
		return false
	}
	e, ok := rank[expect]
	if !ok {
		e = 0
	}
	return g <= e
}
