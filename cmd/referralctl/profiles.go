package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/spf13/cobra"

	"github.com/Graziano10/referral-admin/client"
	"github.com/Graziano10/referral-admin/directory"
)

// filterFlags are the listing filters shared by list, export and leaderboard.
type filterFlags struct {
	search, region, company, vat, referredBy string
	personType, verified, sort              string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "Free text search")
	cmd.Flags().StringVar(&f.region, "region", "", "Filter by region")
	cmd.Flags().StringVar(&f.company, "company", "", "Filter by company name")
	cmd.Flags().StringVar(&f.vat, "vat", "", "Filter by VAT number")
	cmd.Flags().StringVar(&f.referredBy, "referred-by", "", "Filter by the referral code used at sign-up")
	cmd.Flags().StringVar(&f.personType, "type", "", "azienda or persona")
	cmd.Flags().StringVar(&f.verified, "verified", "", "true or false")
	cmd.Flags().StringVar(&f.sort, "sort", "createdAt:desc", "Sort as field[:asc|desc]")
}

// apply folds the flags into q. Every filter resets the page, so callers
// set the page last.
func (f *filterFlags) apply(q directory.Query) (directory.Query, error) {
	field, dir, err := directory.ParseSort(f.sort)
	if err != nil {
		return q, err
	}
	q = q.WithSearch(f.search).
		WithRegion(f.region).
		WithCompanyName(f.company).
		WithVATNumber(f.vat).
		WithReferredBy(f.referredBy).
		WithPersonType(client.PersonFilter(f.personType)).
		WithSort(field, dir)

	switch strings.ToLower(f.verified) {
	case "":
	case "true", "yes":
		q = q.WithVerified(client.VerifiedOnly)
	case "false", "no":
		q = q.WithVerified(client.UnverifiedOnly)
	default:
		return q, fmt.Errorf("--verified must be true or false, got %q", f.verified)
	}
	return q, nil
}

func (a *app) newListCmd() *cobra.Command {
	var (
		filters  filterFlags
		pageSize int
		page     int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := filters.apply(directory.NewQuery())
			if err != nil {
				return err
			}
			q = q.WithPageSize(pageSize).WithPage(page)

			coord := directory.NewCoordinator(a.client, a.ranks, q)
			if err := coord.Refresh(cmd.Context()); err != nil {
				return err
			}
			resp := coord.List().Page

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return renderList(out, resp)
		},
	}

	filters.bind(cmd)
	cmd.Flags().IntVar(&pageSize, "page-size", client.DefaultPageSize, "Profiles per page (10, 20 or 50)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw page as JSON")

	return cmd
}

func renderList(w io.Writer, resp *client.ListProfilesResponse) error {
	if len(resp.Docs) == 0 {
		fmt.Fprintln(w, "No profiles found")
		return nil
	}
	t := newTable("ID", "NAME", "EMAIL", "TYPE", "REGION", "VERIFIED", "CODE", "JOINED")
	for _, p := range resp.Docs {
		t.add(p.ID, p.DisplayName(), p.Email, string(p.Type), p.Region,
			strconv.FormatBool(p.Verified), p.ReferralCode, shortDate(p.DateJoined))
	}
	if err := t.render(w); err != nil {
		return err
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d profiles", resp.Page, resp.TotalPages, resp.TotalDocs)))
	return nil
}

func shortDate(t *strfmt.DateTime) string {
	if t == nil {
		return ""
	}
	return time.Time(*t).UTC().Format(time.DateOnly)
}

func (a *app) newShowCmd() *cobra.Command {
	var opts client.DetailOptions

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a profile with its referrals and reward tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := directory.NewCoordinator(a.client, a.ranks, directory.NewQuery())
			if err := coord.Open(cmd.Context(), args[0], opts); err != nil {
				return err
			}
			return renderDetail(cmd.OutOrStdout(), coord.Detail())
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 0, "Referral page")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Referrals per page")
	cmd.Flags().StringVar(&opts.Fields, "fields", "", "Comma separated profile fields to fetch")

	return cmd
}

func renderDetail(w io.Writer, st directory.DetailState) error {
	d, pr := st.Detail, st.Progression
	p := d.Profile

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(p.DisplayName()))
	sb.WriteString("\n\n")
	field(&sb, "ID", p.ID)
	field(&sb, "Email", p.Email)
	field(&sb, "Phone", p.Phone)
	field(&sb, "Type", string(p.Type))
	field(&sb, "Company", p.CompanyName)
	field(&sb, "VAT", p.VATNumber)
	field(&sb, "Region", p.Region)
	field(&sb, "Verified", strconv.FormatBool(p.Verified))
	field(&sb, "Referral code", p.ReferralCode)
	field(&sb, "Referred by", p.ReferredBy)
	field(&sb, "Joined", shortDate(p.DateJoined))

	sb.WriteString("\n")
	field(&sb, "Referrals", strconv.Itoa(pr.Count))
	field(&sb, "Rank", fmt.Sprintf("%s (level %d, %s)", pr.Current.Label, pr.Current.Level, pr.Current.Reward))
	if pr.Next != nil {
		field(&sb, "Next", fmt.Sprintf("%s in %d (%d%%)", pr.Next.Label, pr.Remaining, pr.Percent))
	} else {
		field(&sb, "Next", "top tier reached")
	}

	if len(d.Referrals.Emails) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Referred profiles (page %d, %d of %d)", d.Referrals.Page, d.Referrals.Count, d.Referrals.Total)))
		sb.WriteString("\n")
		for _, e := range d.Referrals.Emails {
			sb.WriteString("  " + e + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (a *app) newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more profiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %d profile(s) without --yes", len(args))
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				resp, err := a.client.DeleteProfile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %s (%s)\n", resp.Profile.ID, resp.Profile.Email)
				return nil
			}

			results := a.client.DeleteProfiles(cmd.Context(), args)
			t := newTable("ID", "RESULT", "ATTEMPTS")
			failed := 0
			for _, r := range results {
				var status string
				switch {
				case r.Err != nil:
					failed++
					status = client.Message(r.Err)
				case r.Deleted != nil:
					status = "deleted " + r.Deleted.Email
				default:
					status = "deleted"
				}
				t.add(r.ID, status, strconv.Itoa(r.Attempts))
			}
			if err := t.render(out); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d deletions failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")

	return cmd
}
