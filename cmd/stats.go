package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kysymyssota/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats [player]",
	Short: "Show game statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		agg := stats.New(st)
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			records, err := agg.PlayerStatistics(ctx, args[0])
			if err != nil {
				return err
			}
			if records == nil {
				fmt.Fprintf(out, "No player named %q.\n", args[0])
				return nil
			}
			if len(records) == 0 {
				fmt.Fprintf(out, "%s has not finished a game yet.\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Statistics for %s:\n", args[0])
			for _, rec := range records {
				fmt.Fprintf(out, "  %-12s %d games, %d points, %d correct / %d wrong, avg %d ms\n",
					rec.Category, rec.GamesPlayed, rec.TotalScore,
					rec.CorrectCount, rec.WrongCount, rec.AvgLatencyMs)
			}
			return nil
		}

		o, err := agg.BuildOverview(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Hall of fame:")
		if o.TopScorer != nil {
			fmt.Fprintf(out, "  Top scorer:            %s (%d points)\n", o.TopScorer.Player.Name, o.TopScorer.Score)
		}
		if o.BestSession != nil && o.BestSession.Player != nil {
			fmt.Fprintf(out, "  Best single game:      %s (%d points in %d questions)\n",
				o.BestSession.Player.Name, o.BestSession.Session.Score, o.BestSession.Session.QuestionCount)
		}
		if o.MostGamesPlayed != nil {
			fmt.Fprintf(out, "  Most games played:     %s (%d)\n", o.MostGamesPlayed.Player.Name, o.MostGamesPlayed.Count)
		}
		if o.BestAnswerPercentage != nil {
			fmt.Fprintf(out, "  Best answer rate:      %s (%.1f%%)\n", o.BestAnswerPercentage.Player.Name, o.BestAnswerPercentage.Percent)
		}
		if o.LongestCorrectStreak != nil {
			fmt.Fprintf(out, "  Longest streak:        %s (%d correct in a row)\n", o.LongestCorrectStreak.Player.Name, o.LongestCorrectStreak.Count)
		}
		if o.LongestWrongStreak != nil {
			fmt.Fprintf(out, "  Unluckiest streak:     %s (%d wrong in a row)\n", o.LongestWrongStreak.Player.Name, o.LongestWrongStreak.Count)
		}
		if o.LastSecondAnswers != nil {
			fmt.Fprintf(out, "  Last-second answers:   %s (%d)\n", o.LastSecondAnswers.Player.Name, o.LastSecondAnswers.Count)
		}
		if o.FastestAnswer != nil {
			fmt.Fprintf(out, "  Fastest answer:        %s (%d ms)\n", o.FastestAnswer.Player.Name, o.FastestAnswer.LatencyMs)
		}
		if o.FastestAverage != nil {
			fmt.Fprintf(out, "  Fastest on average:    %s (%d ms)\n", o.FastestAverage.Player.Name, o.FastestAverage.LatencyMs)
		}
		if o.MostAskedCategory != nil {
			fmt.Fprintf(out, "  Most asked category:   %s (%d answers)\n", o.MostAskedCategory.Category, o.MostAskedCategory.Count)
		}
		if o.HardestCategory != nil {
			fmt.Fprintf(out, "  Hardest category:      %s (%.0f%% wrong)\n", o.HardestCategory.Category, o.HardestCategory.WrongPercent)
		}
		fmt.Fprintf(out, "  Total points scored:   %d\n", o.TotalScore)

		top, err := agg.TopPlayers(ctx, 10)
		if err != nil {
			return err
		}
		if len(top) > 0 {
			fmt.Fprintln(out, "\nLeaderboard:")
			for i, ps := range top {
				fmt.Fprintf(out, "  %2d. %-20s %d\n", i+1, ps.Player.Name, ps.Score)
			}
		}
		return nil
	},
}
