package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"CoinScope/internal/di"
	"CoinScope/internal/domain/models"
)

const importChunk = 5000

func newImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load OHLC rows from a CSV file into the store",
		Long: `Columns: coin_id,timestamp,open,high,low,close. A header row is optional.
Timestamps are RFC3339 or Unix seconds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := parseOHLCCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, cleanup, err := di.InitializeStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			bar := progressbar.NewOptions(len(rows),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Importing"),
			)
			written := 0
			for start := 0; start < len(rows); start += importChunk {
				end := start + importChunk
				if end > len(rows) {
					end = len(rows)
				}
				n, err := store.InsertBatch(cmd.Context(), rows[start:end])
				written += n
				if err != nil {
					return fmt.Errorf("after %d rows: %w", written, err)
				}
				_ = bar.Add(end - start)
			}
			_ = bar.Finish()
			fmt.Printf("\nimported %d rows into %s\n", written, cfg.Store.Table)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func parseOHLCCSV(r io.Reader) ([]models.OHLC, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	cr.TrimLeadingSpace = true

	var out []models.OHLC
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "coin_id") {
			continue
		}
		row, err := parseOHLCRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseOHLCRecord(rec []string) (models.OHLC, error) {
	asset := strings.TrimSpace(rec[0])
	if asset == "" {
		return models.OHLC{}, errors.New("empty coin_id")
	}
	ts, err := parseTimestamp(strings.TrimSpace(rec[1]))
	if err != nil {
		return models.OHLC{}, err
	}
	var prices [4]float64
	for i := range prices {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[2+i]), 64)
		if err != nil {
			return models.OHLC{}, fmt.Errorf("column %d: %w", 3+i, err)
		}
		prices[i] = v
	}
	return models.OHLC{
		AssetID:   asset,
		Timestamp: ts,
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: want RFC3339 or unix seconds", s)
	}
	return t.UTC(), nil
}
