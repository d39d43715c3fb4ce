package cli

import (
	"fmt"
	"log"

	"advent-quiz-service/internal/config"
	"advent-quiz-service/internal/infra/memory"
	"advent-quiz-service/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewSeedCmd upserts questions from a YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load calendar questions from a YAML file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Questions.SeedFile
			}
			if file == "" {
				return fmt.Errorf("no seed file: pass --file or set questions.seed_file")
			}
			questions, err := memory.ReadQuestionsFile(file)
			if err != nil {
				return err
			}

			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := runMigrations(cmd.Context(), db); err != nil {
				return err
			}
			n, err := postgres.SeedQuestions(cmd.Context(), db, questions)
			if err != nil {
				return fmt.Errorf("seed questions: %w", err)
			}
			log.Printf("seeded %d questions from %s", n, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "questions YAML (defaults to questions.seed_file)")
	return cmd
}
