package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"TradeSim/internal/domain/models"
	"TradeSim/internal/services/technical"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func classifyCmd() *cobra.Command {
	var (
		file   string
		price  float64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "classify -f readings.yaml",
		Short: "Classify indicator and moving average readings from a YAML file",
		Long: `Reads a YAML document with indicators, moving_averages and current_price
and prints the decision for every reading plus the summaries.

  current_price: 100
  indicators:
    - {kind: RSI, value: 25}
    - {kind: MACD, value: {macd: 3, signal: 1}}
  moving_averages:
    - {period: 20, kind: Simple, value: 90}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("price") {
				req.CurrentPrice = price
			}
			summary, err := technical.Evaluate(req.Indicators, req.MovingAverages, req.CurrentPrice)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML readings file, - for stdin")
	cmd.Flags().Float64Var(&price, "price", 0, "current price, overrides current_price in the file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readRequest(file string, stdin io.Reader) (*models.ClassifyRequest, error) {
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read readings: %w", err)
	}
	var req models.ClassifyRequest
	if err := yaml.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("parse readings: %w", err)
	}
	return &req, nil
}

func printSummary(w io.Writer, s models.TechnicalSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDICATOR\tVALUE\tDECISION")
	for _, o := range s.Oscillators {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Kind, formatValue(o.Value), o.Decision)
	}
	fmt.Fprintf(tw, "oscillators\tbuy=%d sell=%d neutral=%d\t\n",
		s.OscillatorSummary.Buy, s.OscillatorSummary.Sell, s.OscillatorSummary.Neutral)
	if len(s.MovingAverages) > 0 {
		fmt.Fprintln(tw, "\t\t")
		fmt.Fprintln(tw, "MOVING AVERAGE\tVALUE\tDECISION")
		for _, ma := range s.MovingAverages {
			fmt.Fprintf(tw, "%s(%d)\t%g\t%s\n", ma.Kind, ma.Period, ma.Value, ma.Decision)
		}
		fmt.Fprintf(tw, "moving averages\tbuy=%d sell=%d neutral=%d\t%s\n",
			s.MovingAverageSummary.Buy, s.MovingAverageSummary.Sell, s.MovingAverageSummary.Neutral,
			s.MovingAverageSummary.Decision)
	}
	fmt.Fprintf(tw, "overall\t\t%s\n", s.Overall)
	return tw.Flush()
}

func formatValue(v models.IndicatorValue) string {
	switch v.Type {
	case models.ValueScalar:
		return fmt.Sprintf("%g", v.Scalar)
	case models.ValueMACD:
		return fmt.Sprintf("%g/%g", v.MACD.MACD, v.MACD.Signal)
	case models.ValueLabel:
		return v.Label
	default:
		return "-"
	}
}
