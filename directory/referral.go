package directory

import (
	"sort"

	"github.com/Graziano10/referral-admin/client"
	"github.com/Graziano10/referral-admin/rank"
)

// ReferralIndex maps a referral code to the profiles that signed up with it.
// Profiles without a referrer are skipped.
func ReferralIndex(docs []client.ProfileSummary) map[string][]client.ProfileSummary {
	idx := make(map[string][]client.ProfileSummary)
	for _, p := range docs {
		if p.ReferredBy == "" {
			continue
		}
		idx[p.ReferredBy] = append(idx[p.ReferredBy], p)
	}
	return idx
}

// Standing is one referrer's position on the leaderboard.
type Standing struct {
	Profile     client.ProfileSummary
	Referrals   int
	Progression rank.Progression
}

// Leaderboard ranks the profiles in docs by how many other profiles in docs
// they referred, most first. Ties keep email order. Profiles with no
// referrals are left out.
func Leaderboard(docs []client.ProfileSummary, table *rank.Table) []Standing {
	if table == nil {
		table = rank.Default
	}
	idx := ReferralIndex(docs)
	var out []Standing
	for _, p := range docs {
		n := len(idx[p.ReferralCode])
		if p.ReferralCode == "" || n == 0 {
			continue
		}
		out = append(out, Standing{Profile: p, Referrals: n, Progression: table.Progression(n)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Referrals != out[j].Referrals {
			return out[i].Referrals > out[j].Referrals
		}
		return out[i].Profile.Email < out[j].Profile.Email
	})
	return out
}
