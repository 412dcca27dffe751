package main

import (
	"fmt"
	"strconv"

	"TradeSim/internal/services/technical"

	"github.com/spf13/cobra"
)

func overallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overall BUY SELL",
		Short: "Map total buy and sell counts onto an overall signal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buy, err := count("BUY", args[0])
			if err != nil {
				return err
			}
			sell, err := count("SELL", args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), technical.DetermineOverallSignal(buy, sell))
			return nil
		},
	}
}

func count(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, s)
	}
	return n, nil
}
