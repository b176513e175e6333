package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fss-cli",
		Short: "FSS CLI tool",
		Long:  `A command line interface for interacting with the Financial Stability System API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FSS API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(whatIfCmd())
	rootCmd.AddCommand(goalsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Trigger a full evaluation run",
		Run: func(cmd *cobra.Command, args []string) {
			printSnapshotSummary(post("/api/v1/snapshots/run", nil))
		},
	}
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "latest",
		Short: "Show the latest snapshot",
		Run: func(cmd *cobra.Command, args []string) {
			printSnapshotSummary(get("/api/v1/snapshots/latest"))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get [date]",
		Short: "Show the snapshot for a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			printSnapshotSummary(get("/api/v1/snapshots/" + args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dates",
		Short: "List snapshot dates",
		Run: func(cmd *cobra.Command, args []string) {
			printRawJSON(get("/api/v1/snapshots/"))
		},
	})

	return cmd
}

func whatIfCmd() *cobra.Command {
	var date string
	var reserve string

	cmd := &cobra.Command{
		Use:   "whatif",
		Short: "Replay a snapshot against a hypothetical reserve threshold",
		Run: func(cmd *cobra.Command, args []string) {
			payload, _ := json.Marshal(map[string]any{
				"as_of_date":        date + "T00:00:00Z",
				"reserve_threshold": reserve,
			})
			printSnapshotSummary(post("/api/v1/snapshots/whatif", payload))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Evaluation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reserve, "reserve", "", "Hypothetical reserve threshold")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("reserve")

	return cmd
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Savings goal operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List savings goals",
		Run: func(cmd *cobra.Command, args []string) {
			printRawJSON(get("/api/v1/goals/"))
		},
	})

	return cmd
}

func get(path string) []byte {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	return readOK(resp)
}

func post(path string, payload []byte) []byte {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", strings.NewReader(string(payload)))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	return readOK(resp)
}

func readOK(resp *http.Response) []byte {
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}

type snapshotSummary struct {
	AsOfDate       string `json:"as_of_date"`
	Recommendation struct {
		RecommendedAmount string   `json:"recommended_amount"`
		SafetyLevel       string   `json:"safety_level"`
		Rationale         []string `json:"rationale"`
		EarliestSafeDate  *string  `json:"earliest_safe_date"`
	} `json:"recommendation"`
	Obligations []struct {
		PayeeKey         string `json:"payee_key"`
		ExpectedAmount   string `json:"expected_amount"`
		CadenceKind      string `json:"cadence_kind"`
		NextExpectedDate string `json:"next_expected_date"`
	} `json:"obligations"`
	Stale        bool     `json:"stale"`
	StaleSources []string `json:"stale_sources"`
}

func printSnapshotSummary(body []byte) {
	var s snapshotSummary
	if err := json.Unmarshal(body, &s); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Snapshot for %s\n", s.AsOfDate)
	fmt.Printf("Safe to draw down: %s (%s)\n", s.Recommendation.RecommendedAmount, s.Recommendation.SafetyLevel)
	if s.Recommendation.EarliestSafeDate != nil {
		fmt.Printf("Earliest safe date: %s\n", *s.Recommendation.EarliestSafeDate)
	}
	for _, r := range s.Recommendation.Rationale {
		fmt.Printf("  - %s\n", truncate(r, 100))
	}
	if len(s.Obligations) > 0 {
		fmt.Printf("Obligations:\n")
		for _, o := range s.Obligations {
			fmt.Printf("  %-24s %10s %-12s next %s\n", truncate(o.PayeeKey, 24), o.ExpectedAmount, o.CadenceKind, o.NextExpectedDate)
		}
	}
	if s.Stale {
		fmt.Printf("WARNING: stale sources: %s\n", strings.Join(s.StaleSources, ", "))
	}
}

func printRawJSON(body []byte) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printJSON(v)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
