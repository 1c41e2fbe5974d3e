package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sammoorhouse/mentos/internal/cli"
	"github.com/sammoorhouse/mentos/internal/common"
	"github.com/sammoorhouse/mentos/internal/model"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or update a user's preferences",
		Long: `Show or update a user's timezone, tone, quiet hours, daily budget and
notification cap. Flags that are not given leave the stored value alone.`,
		RunE: runPrefs,
	}

	cmd.Flags().StringP("user", "u", "", "user id (required)")
	cmd.Flags().String("timezone", "", "IANA timezone, e.g. Europe/London")
	cmd.Flags().String("tone", "", "coaching tone, e.g. supportive")
	cmd.Flags().String("quiet-start", "", "quiet hours start, HH:MM local")
	cmd.Flags().String("quiet-end", "", "quiet hours end, HH:MM local")
	cmd.Flags().Int64("daily-budget", 0, "daily budget in pence")
	cmd.Flags().Int("max-per-day", 0, "max notifications per day")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runPrefs(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	prefs, err := store.GetPreferences(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		prefs = &model.Preferences{UserID: userID}
	}

	changed := false
	if v, _ := cmd.Flags().GetString("timezone"); v != "" {
		if _, err := time.LoadLocation(v); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", v, err)
		}
		prefs.Timezone = v
		changed = true
	}
	if v, _ := cmd.Flags().GetString("tone"); v != "" {
		prefs.Tone = v
		changed = true
	}
	if v, _ := cmd.Flags().GetString("quiet-start"); v != "" {
		prefs.QuietHours.Start = v
		changed = true
	}
	if v, _ := cmd.Flags().GetString("quiet-end"); v != "" {
		prefs.QuietHours.End = v
		changed = true
	}
	if v, _ := cmd.Flags().GetInt64("daily-budget"); v > 0 {
		prefs.DailyBudget = v
		changed = true
	}
	if v, _ := cmd.Flags().GetInt("max-per-day"); v > 0 {
		prefs.MaxNotificationsPerDay = v
		changed = true
	}

	if changed {
		if err := store.SavePreferences(ctx, prefs); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
		fmt.Println(cli.FormatSuccess("Preferences saved for " + userID))
	}

	fmt.Println(cli.FormatTitle("Preferences"))
	fmt.Printf("  Timezone:      %s\n", valueOr(prefs.Timezone, defaultTimezone))
	fmt.Printf("  Tone:          %s\n", valueOr(prefs.Tone, "supportive"))
	fmt.Printf("  Quiet hours:   %s-%s\n", valueOr(prefs.QuietHours.Start, "22:00"), valueOr(prefs.QuietHours.End, "07:00"))
	if prefs.DailyBudget > 0 {
		fmt.Printf("  Daily budget:  %s\n", cli.FormatPence(prefs.DailyBudget))
	} else {
		fmt.Printf("  Daily budget:  %s (default)\n", cli.FormatPence(3000))
	}
	if prefs.MaxNotificationsPerDay > 0 {
		fmt.Printf("  Max per day:   %d\n", prefs.MaxNotificationsPerDay)
	} else {
		fmt.Printf("  Max per day:   1 (default)\n")
	}
	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback + " (default)"
	}
	return value
}
