package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kysymyssota/internal/game"
	"kysymyssota/internal/store"
)

var playCmd = &cobra.Command{
	Use:   "play [player]",
	Short: "Start a quiz session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		log := logger(cmd)
		engine := game.New(st, game.Options{Logger: &log})

		in := bufio.NewScanner(os.Stdin)
		out := cmd.OutOrStdout()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			fmt.Fprint(out, "Player name: ")
			name = readLine(in)
		}
		if name == "" {
			return fmt.Errorf("player name is required")
		}

		opts := game.StartOptions{}
		if count, _ := cmd.Flags().GetInt("count"); count > 0 {
			opts.QuestionCount = count
		}
		if category, _ := cmd.Flags().GetString("category"); category != "" {
			opts.Category = category
		}
		if tierFlag, _ := cmd.Flags().GetString("tier"); tierFlag != "" {
			tier := store.Tier(tierFlag)
			if !tier.Valid() {
				return fmt.Errorf("unknown tier %q (want one of %v)", tierFlag, store.Tiers)
			}
			opts.Tier = tier
		}
		if age, _ := cmd.Flags().GetInt("age"); age > 0 {
			opts.Age = &age
		}

		ctx := cmd.Context()
		state, err := engine.StartSession(ctx, name, opts)
		if err != nil {
			var noQ *game.NoQuestionAvailableError
			if state != nil && errors.As(err, &noQ) {
				// Filters too narrow; retry the first question
				// unfiltered rather than aborting the session.
				fmt.Fprintf(out, "No questions match %s; opening up the whole pool.\n", noQ)
				opts.Category = ""
				opts.Tier = ""
				if state, err = engine.AdvanceQuestion(ctx, state.SessionID, "", ""); err != nil {
					return err
				}
			} else {
				return err
			}
		}

		fmt.Fprintf(out, "\nWelcome, %s! %d questions. Answer fast for bonus points.\n",
			state.Player.Name, state.TotalQuestions)

		for {
			q := state.CurrentQuestion
			fmt.Fprintf(out, "\n[%d/%d] (%s, %s) %s\n",
				state.QuestionIndex, state.TotalQuestions, q.Category, q.Tier, q.Text)
			for i, option := range state.Options {
				fmt.Fprintf(out, "  %d) %s\n", i+1, option)
			}
			fmt.Fprint(out, "> ")

			answer := resolveOption(readLine(in), state.Options)

			result, err := engine.SubmitAnswer(ctx, state.SessionID, answer)
			if err != nil {
				return err
			}
			if result.Correct {
				fmt.Fprintf(out, "Correct! +%d points", result.Points)
				if result.Breakdown.StreakBonus > 0 {
					fmt.Fprintf(out, " (includes %d streak bonus)", result.Breakdown.StreakBonus)
				}
				fmt.Fprintln(out)
			} else {
				fmt.Fprintf(out, "Wrong. The answer was: %s\n", result.CorrectAnswer)
			}

			if state.QuestionIndex >= state.TotalQuestions {
				break
			}
			next, err := engine.AdvanceQuestion(ctx, state.SessionID, opts.Category, opts.Tier)
			if err != nil {
				var noQ *game.NoQuestionAvailableError
				if errors.As(err, &noQ) {
					fmt.Fprintln(out, "Ran out of matching questions.")
					break
				}
				return err
			}
			state = next
		}

		final, err := engine.EndSession(ctx, state.SessionID)
		if err != nil {
			return err
		}
		if final != nil {
			fmt.Fprintf(out, "\nGame over! %s scored %d points.\n", final.Player.Name, final.Score)
		}
		return nil
	},
}

func init() {
	playCmd.Flags().IntP("count", "n", 0, "Number of questions in the session")
	playCmd.Flags().StringP("category", "c", "", "Restrict questions to one category")
	playCmd.Flags().StringP("tier", "t", "", "Restrict questions to one difficulty tier")
	playCmd.Flags().Int("age", 0, "Player age, used when creating a new player")
}

func readLine(in *bufio.Scanner) string {
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// resolveOption maps a numeric choice onto the option text, passing
// free-text answers through unchanged.
func resolveOption(input string, options []string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return input
}
