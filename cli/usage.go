package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/michael-borck/venture-lab-sub000/internal/downloads"
)

// ShowStats prints aggregated usage for the last N days, or for all
// history when days is non-positive.
func (a *App) ShowStats(ctx context.Context, days int) error {
	stats, err := a.Ledger.Stats(ctx, days)
	if err != nil {
		return err
	}

	if stats.PeriodDays > 0 {
		fmt.Printf("Usage over the last %d days:\n", stats.PeriodDays)
	} else {
		fmt.Println("Usage over all history:")
	}
	fmt.Printf("  Requests:  %d (%d ok, %d failed)\n",
		stats.TotalRequests, stats.SuccessfulRequests, stats.FailedRequests)
	fmt.Printf("  Tokens:    %d in + %d out = %d\n",
		stats.TotalInputTokens, stats.TotalOutputTokens, stats.TotalTokens)
	fmt.Printf("  Avg time:  %.0f ms\n", stats.AvgResponseTimeMs)

	if len(stats.ByProvider) > 0 {
		fmt.Println("\nBy provider:")
		for _, ps := range stats.ByProvider {
			fmt.Printf("  %-10s %-30s %5d requests, %d tokens\n",
				ps.Provider, ps.Model, ps.Requests, ps.InputTokens+ps.OutputTokens)
		}
	}
	if len(stats.ByTool) > 0 {
		fmt.Println("\nBy tool:")
		for _, ts := range stats.ByTool {
			fmt.Printf("  %-16s %5d requests, %d tokens\n",
				ts.Tool, ts.Requests, ts.InputTokens+ts.OutputTokens)
		}
	}
	return nil
}

// ShowHistory prints recent records, most recent first.
func (a *App) ShowHistory(ctx context.Context, limit, offset int) error {
	records, err := a.Ledger.History(ctx, limit, offset)
	if err != nil {
		return err
	}

	for _, rec := range records {
		status := "ok"
		if !rec.Success {
			status = "failed"
		}
		fmt.Printf("%s  %-10s %-30s %-16s %6s %5d tokens %5d ms\n",
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Provider, rec.Model, rec.Tool, status,
			rec.TotalTokens(), rec.ResponseTimeMs)
		if rec.ErrorMessage != "" {
			fmt.Printf("    %s\n", rec.ErrorMessage)
		}
	}
	return nil
}

// ClearUsage deletes all usage records.
func (a *App) ClearUsage(ctx context.Context) error {
	n, err := a.Ledger.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Cleared %d usage records\n", n)
	return nil
}

// ExportUsage writes a JSON snapshot of all records into Downloads.
func (a *App) ExportUsage(ctx context.Context) error {
	snapshot, err := a.Ledger.Snapshot(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize usage export: %w", err)
	}

	filename := fmt.Sprintf("venture-lab-usage-%s.json", time.Now().Format("2006-01-02"))
	path, err := downloads.SaveFile(filename, data)
	if err != nil {
		return err
	}
	fmt.Printf("Exported usage to %s\n", path)
	return nil
}
