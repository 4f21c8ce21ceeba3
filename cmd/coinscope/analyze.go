package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"CoinScope/internal/di"
	"CoinScope/internal/domain/models"
	"CoinScope/pkg/util"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		coin      string
		timeframe string
		withFC    bool
		horizon   int
		format    string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the analytics summary for one asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			uc, cleanup, err := di.InitializeAnalytics(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			summary, err := uc.Summary(ctx, coin, timeframe)
			if err != nil {
				return err
			}
			var fc *models.ForecastReport
			if withFC || horizon > 0 {
				if fc, err = uc.Forecast(ctx, coin, timeframe, horizon); err != nil {
					return err
				}
			}

			if format == "json" {
				return writeJSON(os.Stdout, map[string]interface{}{"summary": summary, "forecast": fc})
			}
			renderSummary(os.Stdout, summary)
			if fc != nil {
				renderForecast(os.Stdout, fc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&coin, "coin", "", "asset identifier, e.g. BTC")
	cmd.Flags().StringVar(&timeframe, "timeframe", "month", "hour, 4hours, day, week or month")
	cmd.Flags().BoolVar(&withFC, "forecast", false, "include the model forecast")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "future steps to roll out (implies --forecast)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	_ = cmd.MarkFlagRequired("coin")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var (
		coins     string
		timeframe string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare window performance across assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			uc, cleanup, err := di.InitializeAnalytics(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := uc.ComparePerformance(cmd.Context(), util.SplitCSV([]string{coins}), timeframe)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(os.Stdout, res)
			}
			renderComparison(os.Stdout, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&coins, "coins", "", "comma-separated asset identifiers")
	cmd.Flags().StringVar(&timeframe, "timeframe", "month", "hour, 4hours, day, week or month")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	_ = cmd.MarkFlagRequired("coins")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSummary(w io.Writer, s *models.FeatureSummary) {
	fmt.Fprintf(w, "%s over %s (%d samples, %s to %s)\n\n",
		s.AssetID, s.Timeframe, s.Samples, s.From.Format(time.RFC3339), s.To.Format(time.RFC3339))

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Metric", "Value"}),
	)
	table.Append([]string{"Last close", formatMetric(s.LastClose, "%.4f")})
	table.Append([]string{"Moving average (30)", formatMetric(s.MovingAverage, "%.4f")})
	table.Append([]string{"Volatility", formatMetric(s.Volatility, "%.4f")})
	table.Append([]string{"Support", formatMetric(s.Support, "%.4f")})
	table.Append([]string{"Resistance", formatMetric(s.Resistance, "%.4f")})
	table.Append([]string{"Performance", formatMetric(s.PerformancePercentage, "%.2f%%")})
	table.Render()
}

func renderForecast(w io.Writer, fc *models.ForecastReport) {
	fmt.Fprintf(w, "\nForecast (lookback %d, %d in-sample predictions)\n\n", fc.Lookback, len(fc.Predictions))

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Step", "Predicted close"}),
	)
	if n := len(fc.Predictions); n > 0 {
		table.Append([]string{"last in-sample", formatMetric(fc.Predictions[n-1], "%.4f")})
	}
	for i, m := range fc.Future {
		table.Append([]string{fmt.Sprintf("t+%d", i+1), formatMetric(m, "%.4f")})
	}
	table.Render()
}

func renderComparison(w io.Writer, res *models.PerformanceComparison) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Coin", "Samples", "First", "Last", "Performance", "Error"}),
	)
	for _, r := range res.Results {
		errText := ""
		if r.Error != nil {
			errText = r.Error.Code
		}
		table.Append([]string{
			r.AssetID,
			fmt.Sprintf("%d", r.Samples),
			formatMetric(r.FirstClose, "%.4f"),
			formatMetric(r.LastClose, "%.4f"),
			formatMetric(r.PerformancePercentage, "%.2f%%"),
			errText,
		})
	}
	table.Render()
}

func formatMetric(m models.Metric, format string) string {
	v, ok := m.Float64()
	if !ok {
		return "n/a"
	}
	return strings.TrimSpace(fmt.Sprintf(format, v))
}
