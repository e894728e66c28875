package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) newRanksCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "Print the reward ladder, or where a referral count lands on it",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("count") {
				p := a.ranks.Progression(count)
				fmt.Fprintf(out, "%d referrals: %s (level %d, %s)\n", p.Count, p.Current.Label, p.Current.Level, p.Current.Reward)
				if p.Next != nil {
					fmt.Fprintf(out, "next: %s in %d more (%d%%)\n", p.Next.Label, p.Remaining, p.Percent)
				} else {
					fmt.Fprintln(out, "top tier reached")
				}
				return nil
			}

			t := newTable("LEVEL", "LABEL", "FROM", "REWARD")
			for _, r := range a.ranks.Ranks() {
				t.add(strconv.Itoa(r.Level), r.Label, strconv.Itoa(r.Min), r.Reward)
			}
			return t.render(out)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Referral count to resolve")

	return cmd
}
