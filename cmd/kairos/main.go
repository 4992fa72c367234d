package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "kairos",
	Short: "KAIROS - crypto strategy backtesting engine",
	Long: `KAIROS runs trading strategies against historical candle data and
reports trades, equity curves and performance statistics. Fetched bars and
finished results are cached so repeated runs are cheap.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
