package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/txingest/internal/adapter/http/dto"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "txingest-cli",
		Short:         "txingest CLI tool",
		Long:          `A command line interface for the transaction ingestion service.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the txingest API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TXINGEST_TOKEN"), "Bearer token (defaults to $TXINGEST_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")

	rootCmd.AddCommand(
		runCmd(opts),
		transactionsCmd(opts),
		summaryCmd(opts),
		tokenCmd(),
		migrateCmd(),
		recordCmd(),
	)

	return rootCmd
}

func runCmd(opts *options) *cobra.Command {
	var idempotencyKey string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a pipeline run and wait for its report",
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := map[string]string{}
			if idempotencyKey != "" {
				headers["Idempotency-Key"] = idempotencyKey
			}

			status, body, err := opts.do(http.MethodPost, "/api/v1/pipeline/run", headers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status != http.StatusOK {
				var errResp dto.ErrorResponse
				if json.Unmarshal(body, &errResp) == nil && errResp.Outcome != "" {
					fmt.Fprintf(out, "Run FAILED (%s): %s\n", errResp.Outcome, errResp.Message)
					if errResp.Report != nil {
						printReport(out, errResp.Report)
					}
				}
				return fmt.Errorf("run failed with status %d: %s", status, bytes.TrimSpace(body))
			}

			var resp dto.TriggerRunResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if asJSON {
				return printJSON(out, resp)
			}

			fmt.Fprintf(out, "Inserted: %d\n", resp.Inserted)
			printReport(out, resp.Report)
			return nil
		},
	}

	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header for safe retries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")

	return cmd
}

func transactionsCmd(opts *options) *cobra.Command {
	var take int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the most recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := opts.do(http.MethodGet, fmt.Sprintf("/api/v1/transactions?take=%d", take), nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("request failed with status %d: %s", status, bytes.TrimSpace(body))
			}

			var resp dto.ListTransactionsResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printTransactions(cmd.OutOrStdout(), resp.Transactions)
			return nil
		},
	}

	cmd.Flags().IntVar(&take, "take", 20, "Number of transactions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")

	return cmd
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show transaction counts and totals per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := opts.do(http.MethodGet, "/api/v1/transactions/summary", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("request failed with status %d: %s", status, bytes.TrimSpace(body))
			}

			var days []dto.DailySummaryResponse
			if err := json.Unmarshal(body, &days); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printSummary(cmd.OutOrStdout(), days)
			return nil
		},
	}
}

func (o *options) do(method, path string, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequest(method, o.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
