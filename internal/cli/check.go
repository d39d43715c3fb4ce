package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"advent-quiz-service/internal/config"
	"advent-quiz-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewCheckCmd grades one answer offline and prints the verdict as JSON.
func NewCheckCmd(configPath *string) *cobra.Command {
	var (
		day     int
		correct string
	)
	cmd := &cobra.Command{
		Use:   "check ANSWER...",
		Short: "Grade a single answer for a calendar day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidateDay(day); err != nil {
				return err
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if correct == "" {
				loader, err := questionLoader(cfg, nil)
				if err != nil {
					return err
				}
				q, err := loader.LoadQuestion(cmd.Context(), day)
				if err != nil {
					return fmt.Errorf("day %d: %w (pass --correct)", day, err)
				}
				correct = q.CorrectAnswer
			}

			rdb := newRedisClient(cfg)
			if rdb != nil {
				defer rdb.Close()
			}
			checker, closeChecker, err := buildChecker(cmd.Context(), cfg, rdb)
			if err != nil {
				return err
			}
			defer closeChecker()

			verdict := checker.Check(cmd.Context(), strings.Join(args, " "), correct, day)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(verdict)
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "calendar day (1-24)")
	cmd.Flags().StringVar(&correct, "correct", "", "expected answer (defaults to the seeded question)")
	_ = cmd.MarkFlagRequired("day")
	return cmd
}
