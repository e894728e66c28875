package profiletwin

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	firstNames = []string{"Giulia", "Marco", "Sara", "Luca", "Chiara", "Matteo", "Elena", "Paolo", "Anna", "Davide"}
	lastNames  = []string{"Rossi", "Bianchi", "Romano", "Colombo", "Ricci", "Marino", "Greco", "Bruno", "Gallo", "Conti"}
	regions    = []string{"Lazio", "Lombardia", "Piemonte", "Toscana", "Veneto", "Campania", "Sicilia", "Puglia"}
	companies  = []string{"Alfa Srl", "Beta SpA", "Gamma Sas", "Delta Snc", "Epsilon Srl"}
)

// seedEpoch is the creation time of the first generated profile.
var seedEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// Seed generates n profiles. The same seed always yields the same data.
// Roughly half of the profiles after the first few were referred by an
// earlier one, so referral counts are uneven.
func Seed(n int, seed int64) []Profile {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]Profile, 0, n)
	for i := 0; i < n; i++ {
		id, err := uuid.NewRandomFromReader(rnd)
		if err != nil {
			// rand.Rand never fails to read.
			panic(err)
		}
		first := firstNames[rnd.Intn(len(firstNames))]
		last := lastNames[rnd.Intn(len(lastNames))]
		created := seedEpoch.Add(time.Duration(i) * 26 * time.Hour)
		login := created.Add(time.Duration(rnd.Intn(500)) * time.Hour)

		p := Profile{
			ID:           id.String(),
			UserID:       1000 + i,
			FirstName:    first,
			LastName:     last,
			Email:        fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Phone:        fmt.Sprintf("+39 3%02d %07d", rnd.Intn(100), rnd.Intn(10000000)),
			Type:         TypeIndividual,
			Region:       regions[rnd.Intn(len(regions))],
			Role:         "user",
			Verified:     rnd.Intn(3) > 0,
			ReferralCode: fmt.Sprintf("REF%05d", i+1),
			DateJoined:   strfmt.DateTime(created),
			LastLogin:    dt(login),
			LastActivity: dt(login.Add(time.Duration(rnd.Intn(48)) * time.Hour)),
			CreatedAt:    strfmt.DateTime(created),
			UpdatedAt:    strfmt.DateTime(login),
		}
		if rnd.Intn(2) == 0 {
			p.Type = TypeCompany
			p.CompanyName = companies[rnd.Intn(len(companies))]
			p.VATNumber = fmt.Sprintf("IT%011d", rnd.Int63n(1e11))
		}
		if i >= 3 && rnd.Intn(2) == 0 {
			// Skew towards early profiles so a few become top referrers.
			referrer := rnd.Intn(i) / 2
			p.ReferredBy = out[referrer].ReferralCode
		}
		out = append(out, p)
	}
	return out
}

func dt(t time.Time) *strfmt.DateTime {
	d := strfmt.DateTime(t)
	return &d
}

type seedFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadSeedFile reads profiles from a YAML (or JSON) document with a
// top-level "profiles" list. Missing ids are generated.
func LoadSeedFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i := range f.Profiles {
		if f.Profiles[i].ID == "" {
			f.Profiles[i].ID = uuid.NewString()
		}
		if f.Profiles[i].Email == "" {
			return nil, fmt.Errorf("seed file %s: profile %d has no email", path, i)
		}
	}
	return f.Profiles, nil
}
