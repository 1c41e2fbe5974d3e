package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sammoorhouse/mentos/internal/cli"
	"github.com/sammoorhouse/mentos/internal/common"
	"github.com/sammoorhouse/mentos/internal/config"
	"github.com/sammoorhouse/mentos/internal/insights"
	"github.com/sammoorhouse/mentos/internal/llm"
	"github.com/sammoorhouse/mentos/internal/model"
	"github.com/sammoorhouse/mentos/internal/service"
)

const defaultTimezone = "Europe/London"

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "AI insight pipeline: context, validation and gating",
	}

	cmd.AddCommand(insightsCardsCmd())
	cmd.AddCommand(insightsContextCmd())
	cmd.AddCommand(insightsRunCmd())

	return cmd
}

func insightsCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List the enabled insight cards",
		RunE: func(_ *cobra.Command, _ []string) error {
			cards, err := insights.LoadCards(cardsDir())
			if err != nil {
				return fmt.Errorf("failed to load cards: %w", err)
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%d insight cards", len(cards))))
			for _, card := range cards {
				fmt.Printf("  %s %s (priority %d, max %d/30d)\n",
					cli.SuccessStyle.Render(card.ID),
					card.Title,
					card.Priority,
					card.Cooldown.MaxFiresPer30d)
			}
			return nil
		},
	}
}

func insightsContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the spend context handed to the reasoner",
		RunE: func(c *cobra.Command, _ []string) error {
			userID, _ := c.Flags().GetString("user")

			ctx := c.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			sctx, _, err := buildContext(ctx, store, userID, time.Now())
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(sctx)
		},
	}

	cmd.Flags().StringP("user", "u", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func insightsRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full insight pipeline for a user",
		Long: `Build the spend context, ask the reasoner to pick insight cards,
validate its evidence against the context, apply the notification gate, and
record what was sent or suppressed.

Use --mock-response to run offline against a canned reasoner response.`,
		RunE: runInsights,
	}

	cmd.Flags().StringP("user", "u", "", "user id (required)")
	cmd.Flags().Int("max-matches", insights.DefaultMaxMatches, "maximum insights per run")
	cmd.Flags().String("mock-response", "", "path to a canned reasoner response (skips the API)")
	cmd.Flags().Bool("dry-run", false, "gate but do not record notifications")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runInsights(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	maxMatches, _ := cmd.Flags().GetInt("max-matches")
	mockPath, _ := cmd.Flags().GetString("mock-response")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Now()
	sctx, prefs, err := buildContext(ctx, store, userID, now)
	if err != nil {
		return err
	}

	cards, err := insights.LoadCards(cardsDir())
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}

	prompt, err := insights.BuildPrompt(sctx, cards, maxMatches)
	if err != nil {
		return err
	}

	llmCfg := config.LoadLLMConfig()
	if mockPath != "" {
		llmCfg.MockResponsePath = config.ExpandPath(mockPath)
	}
	client, err := llm.NewClient(llmCfg)
	if err != nil {
		return fmt.Errorf("failed to create reasoner client: %w", err)
	}

	raw, err := client.SelectInsights(ctx, prompt)
	if err != nil {
		return fmt.Errorf("reasoner request failed: %w", err)
	}

	result, err := insights.ValidateLLMResponse(raw, sctx, cards, maxMatches)
	if err != nil {
		return fmt.Errorf("failed to validate response: %w", err)
	}
	if !result.Valid {
		fmt.Println(cli.FormatError("Reasoner response rejected:"))
		for _, msg := range result.Errors {
			fmt.Println(cli.ErrorStyle.Render("  " + msg))
		}
		return fmt.Errorf("reasoner response failed validation")
	}

	previous, err := store.GetNotifications(ctx, userID, now.AddDate(0, 0, -90))
	if err != nil {
		return fmt.Errorf("failed to load notification history: %w", err)
	}

	timezone := prefs.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}
	decision, err := insights.ApplyNotificationPolicy(result.Matches, *prefs, previous, cards, now, timezone)
	if err != nil {
		return fmt.Errorf("failed to apply notification policy: %w", err)
	}

	for _, match := range decision.Allowed {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s %s: %s", cli.InsightIcon, match.InsightID, match.Message)))
		if !dryRun {
			if err := recordNotification(ctx, store, userID, match, model.NotificationSent, now); err != nil {
				return err
			}
		}
	}
	for _, s := range decision.Suppressed {
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("  suppressed %s (%s)", s.InsightID, s.Reason)))
	}

	common.LogInfo("Insight run complete", common.Fields{
		"user":       userID,
		"allowed":    len(decision.Allowed),
		"suppressed": len(decision.Suppressed),
		"dry_run":    dryRun,
	})
	return nil
}

// buildContext assembles the spend context from stored transactions, goals
// and preferences. Missing preferences fall back to defaults.
func buildContext(ctx context.Context, store service.Storage, userID string, now time.Time) (*model.SpendContext, *model.Preferences, error) {
	prefs, err := store.GetPreferences(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, nil, fmt.Errorf("failed to load preferences: %w", err)
		}
		prefs = &model.Preferences{UserID: userID, Timezone: defaultTimezone}
	}
	timezone := prefs.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}

	transactions, err := store.GetTransactionsByUser(ctx, userID, now.AddDate(0, 0, -90))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	goals, err := store.GetGoalSummary(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load goal summary: %w", err)
	}

	sctx, err := insights.BuildSpendContext(transactions, *goals, *prefs, now, timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build spend context: %w", err)
	}
	return sctx, prefs, nil
}

func recordNotification(ctx context.Context, store service.Storage, userID string, match model.Match, status string, now time.Time) error {
	record, err := insights.SerializeNotification(userID, match, status, now)
	if err != nil {
		return fmt.Errorf("failed to serialize notification: %w", err)
	}
	if err := store.SaveNotification(ctx, &record); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}
