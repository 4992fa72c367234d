package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kairos-quant/kairos/internal/logger"
)

var cacheOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the bar and result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached entries",
	Long:  "Remove cached bars and results; --older-than keeps recent entries",
	RunE:  runCacheClear,
}

func init() {
	cacheClearCmd.Flags().DurationVar(&cacheOlderThan, "older-than", 0, "Only remove entries older than this (0 = all)")

	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	store, err := newCacheStore(cfg, log)
	if err != nil {
		return err
	}

	removed, err := store.Clear(cmd.Context(), cacheOlderThan)
	if err != nil {
		return err
	}

	fmt.Printf("removed %d cache entries\n", removed)
	return nil
}
