package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kysymyssota/internal/store"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the question database",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.QuestionFilter{}
		filter.Category, _ = cmd.Flags().GetString("category")
		if tierFlag, _ := cmd.Flags().GetString("tier"); tierFlag != "" {
			filter.Tier = store.Tier(tierFlag)
			if !filter.Tier.Valid() {
				return fmt.Errorf("unknown tier %q", tierFlag)
			}
		}

		questions, err := st.Questions().Matching(cmd.Context(), filter)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, q := range questions {
			flag := " "
			if q.Flagged {
				flag = "!"
			}
			fmt.Fprintf(out, "%s %4d [%s/%s/%dp/%s] %s\n",
				flag, q.ID, q.Category, q.Tier, q.BasePoints, q.Source, q.Text)
		}
		fmt.Fprintf(out, "%d questions\n", len(questions))
		return nil
	},
}

var questionsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with question counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		counts, err := st.Questions().CategoriesWithCounts(cmd.Context())
		if err != nil {
			return err
		}
		for _, cc := range counts {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d\n", cc.Category, cc.Count)
		}
		return nil
	},
}

var questionsAddCmd = &cobra.Command{
	Use:   "add <text> <answer> <wrong1,wrong2,wrong3>",
	Short: "Add a curated question",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		wrongs := strings.Split(args[2], ",")
		if len(wrongs) != 3 {
			return fmt.Errorf("want exactly 3 comma-separated wrong answers, got %d", len(wrongs))
		}

		category, _ := cmd.Flags().GetString("category")
		tierFlag, _ := cmd.Flags().GetString("tier")
		points, _ := cmd.Flags().GetInt("points")

		tier := store.Tier(tierFlag)
		if !tier.Valid() {
			return fmt.Errorf("unknown tier %q", tierFlag)
		}
		if points <= 0 {
			points = store.BasePoints[tier]
		}

		q := &store.Question{
			Text:         args[0],
			Answer:       args[1],
			WrongAnswers: wrongs,
			Category:     strings.ToLower(category),
			Tier:         tier,
			BasePoints:   points,
			CreatedAt:    time.Now(),
			Source:       store.SourceCurated,
		}
		id, err := st.Questions().Add(cmd.Context(), q)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added question %d.\n", id)
		return nil
	},
}

var questionsFlagCmd = &cobra.Command{
	Use:   "flag <id>",
	Short: "Flag a question as faulty so it is skipped",
	Args:  cobra.ExactArgs(1),
	RunE:  questionFlagRun(true),
}

var questionsUnflagCmd = &cobra.Command{
	Use:   "unflag <id>",
	Short: "Clear a question's faulty flag",
	Args:  cobra.ExactArgs(1),
	RunE:  questionFlagRun(false),
}

func questionFlagRun(flag bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid question id %q", args[0])
		}

		if flag {
			err = st.Questions().FlagError(cmd.Context(), id)
		} else {
			err = st.Questions().ClearError(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Question %d updated.\n", id)
		return nil
	}
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid question id %q", args[0])
		}
		if err := st.Questions().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Question %d deleted.\n", id)
		return nil
	},
}

func init() {
	questionsListCmd.Flags().StringP("category", "c", "", "Filter by category")
	questionsListCmd.Flags().StringP("tier", "t", "", "Filter by tier")

	questionsAddCmd.Flags().StringP("category", "c", "general", "Question category")
	questionsAddCmd.Flags().StringP("tier", "t", "apprentice", "Difficulty tier")
	questionsAddCmd.Flags().IntP("points", "p", 0, "Point value (default: tier default)")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsCategoriesCmd)
	questionsCmd.AddCommand(questionsAddCmd)
	questionsCmd.AddCommand(questionsFlagCmd)
	questionsCmd.AddCommand(questionsUnflagCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
}
