package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/app"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the paper for one date and exit",
	Long: "Generate runs one generation for --date (default: today in GENERATION_TIMEZONE)\n" +
		"and prints the result as JSON. A skipped run exits 0.",
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("date", "", "Paper date as YYYY-MM-DD (default today)")
	generateCmd.Flags().String("trigger", dailypaper.TriggerSystem, "Trigger recorded in the generation log (system, cron, admin, admin-regenerate)")
	generateCmd.Flags().String("profile", "", "Adaptive profile: inline JSON or @path/to/profile.json")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	date, _ := cmd.Flags().GetString("date")
	trigger, _ := cmd.Flags().GetString("trigger")
	rawProfile, _ := cmd.Flags().GetString("profile")
	profile, err := parseProfile(rawProfile)
	if err != nil {
		return err
	}

	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log)
	if err != nil {
		log.Sync()
		return err
	}
	defer a.Close()

	res, err := a.Services.Generation.Generate(ctx, dailypaper.GenerateInput{
		Date:        date,
		TriggeredBy: trigger,
		Profile:     profile,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func parseProfile(raw string) (*planner.AdaptiveProfile, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		data = b
	}
	var p planner.AdaptiveProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}
