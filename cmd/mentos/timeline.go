package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sammoorhouse/mentos/internal/cli"
	"github.com/sammoorhouse/mentos/internal/timeline"
)

func timelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the behavioral timeline feed",
		Long: `Regenerate and display the behavioral timeline for a user: weekly
progress, takeaway-free and budget streaks, breakthroughs, and monthly,
quarterly and yearly framing events.`,
		RunE: runTimeline,
	}

	cmd.Flags().StringP("user", "u", "", "user id (required)")
	cmd.Flags().String("cursor", "", "pagination cursor from a previous page")
	cmd.Flags().IntP("limit", "n", 20, "events per page (1-100)")
	cmd.Flags().Bool("json", false, "emit the raw page as JSON")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	cursor, _ := cmd.Flags().GetString("cursor")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	generator := timeline.New(store)
	page, err := generator.Generate(ctx, userID, cursor, limit, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate timeline: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(page)
	}

	fmt.Println(cli.FormatTitle("Your timeline"))
	cli.RenderTimelinePage(os.Stdout, page)
	return nil
}

func timelineActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline-action",
		Short: "Perform a follow-up action from a timeline event",
		Long: `Perform one of the actions attached to a timeline event, such as
accepting suggested targets. The payload is the action's payload JSON as
shown by "mentos timeline --json".`,
		RunE: runTimelineAction,
	}

	cmd.Flags().StringP("user", "u", "", "user id (required)")
	cmd.Flags().String("action", "", "action id, e.g. accept_targets (required)")
	cmd.Flags().String("payload", "{}", "action payload as JSON")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

func runTimelineAction(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	actionID, _ := cmd.Flags().GetString("action")
	payloadJSON, _ := cmd.Flags().GetString("payload")

	var payload map[string]any
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return fmt.Errorf("invalid payload JSON: %w", err)
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	result, err := timeline.PostTimelineAction(ctx, store, userID, actionID, payload, time.Now())
	if err != nil {
		return fmt.Errorf("failed to perform action: %w", err)
	}

	if len(result.CreatedSideEffects) > 0 {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Action %s accepted (%d side effects)", actionID, len(result.CreatedSideEffects))))
		for _, id := range result.CreatedSideEffects {
			fmt.Println(cli.SubtleStyle.Render("  created " + id))
		}
	} else {
		fmt.Println(cli.FormatSuccess("Action " + actionID + " accepted"))
	}
	return nil
}
