package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Graziano10/referral-admin/directory"
)

func (a *app) newExportCmd() *cobra.Command {
	var (
		filters filterFlags
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every profile matching the filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := directory.ParseFormat(format)
			if err != nil {
				return err
			}
			q, err := filters.apply(directory.NewQuery())
			if err != nil {
				return err
			}

			docs, err := directory.BuildExportBundle(cmd.Context(), a.client, q, directory.ExportOptions{
				MaxAttempts: a.cfg.ExportMaxAttempts,
				OnPage: func(page, totalPages int) {
					a.logger.Debug().Int("page", page).Int("total_pages", totalPages).Msg("export page fetched")
				},
			})
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				return directory.WriteExport(cmd.OutOrStdout(), f, docs)
			}
			if err := writeFile(outPath, func(w io.Writer) error { return directory.WriteExport(w, f, docs) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d profiles to %s\n", len(docs), outPath)
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, json or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "Output file, - for stdout")

	return cmd
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func (a *app) newLeaderboardCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank referrers by the profiles they brought in",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := directory.BuildExportBundle(cmd.Context(), a.client, directory.NewQuery(), directory.ExportOptions{
				MaxAttempts: a.cfg.ExportMaxAttempts,
			})
			if err != nil {
				return err
			}
			board := directory.Leaderboard(docs, a.ranks)
			if top > 0 && len(board) > top {
				board = board[:top]
			}

			out := cmd.OutOrStdout()
			if len(board) == 0 {
				fmt.Fprintln(out, "No referrals yet")
				return nil
			}
			t := newTable("#", "EMAIL", "CODE", "REFERRALS", "RANK", "REWARD")
			for i, s := range board {
				t.add(strconv.Itoa(i+1), s.Profile.Email, s.Profile.ReferralCode,
					strconv.Itoa(s.Referrals), s.Progression.Current.Label, s.Progression.Current.Reward)
			}
			return t.render(out)
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Show only the first N referrers, 0 for all")

	return cmd
}
