package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kysymyssota/internal/llm"
	"kysymyssota/internal/qgen"
	"kysymyssota/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new questions with an AI model",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		log := logger(cmd)
		ctx := cmd.Context()

		provider, err := llm.NewProviderFromEnv(ctx, log)
		if err != nil {
			return fmt.Errorf("no model provider configured: %w", err)
		}

		count, _ := cmd.Flags().GetInt("count")
		category, _ := cmd.Flags().GetString("category")
		tierFlag, _ := cmd.Flags().GetString("tier")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		input := qgen.GenerateInput{
			Count:    count,
			Category: category,
		}
		if tierFlag != "" {
			input.Tier = store.Tier(tierFlag)
			if !input.Tier.Valid() {
				return fmt.Errorf("unknown tier %q", tierFlag)
			}
		}

		existing, err := st.Questions().All(ctx)
		if err != nil {
			return err
		}
		input.Existing = existing

		generator := qgen.New(provider, qgen.DefaultConfig())
		questions, err := generator.Generate(ctx, input)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i := range questions {
			q := &questions[i]
			q.CreatedAt = time.Now()
			if !dryRun {
				if _, err := st.Questions().Add(ctx, q); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "[%s/%s/%dp] %s (answer: %s)\n",
				q.Category, q.Tier, q.BasePoints, q.Text, q.Answer)
		}
		if dryRun {
			fmt.Fprintf(out, "%d questions generated (not saved).\n", len(questions))
		} else {
			fmt.Fprintf(out, "%d questions saved.\n", len(questions))
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().IntP("count", "n", 5, "How many questions to generate")
	generateCmd.Flags().StringP("category", "c", "", "Restrict to one category")
	generateCmd.Flags().StringP("tier", "t", "", "Restrict to one difficulty tier")
	generateCmd.Flags().Bool("dry-run", false, "Print generated questions without saving")
}
