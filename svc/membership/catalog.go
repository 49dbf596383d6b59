package membership

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// planIDNamespace makes plan IDs a pure function of (tier, duration), so
// reseeding the same catalog is idempotent across restarts and environments.
var planIDNamespace = uuid.MustParse("8f2b9a4e-6c1d-4e0a-9b72-3d5f08c4a1ee")

// PlanID returns the deterministic identity of the plan for a tier/duration pair.
func PlanID(tierName string, d Duration) uuid.UUID {
	return uuid.NewSHA1(planIDNamespace, []byte(strings.ToLower(tierName)+":"+string(d)))
}

// Catalog is the static tier and plan reference data. Load it from YAML with
// LoadCatalogFile or build it in code, then Validate and Seed it into Storage.
type Catalog struct {
	Tiers []Tier
	Plans []Plan
}

type catalogFile struct {
	Tiers []struct {
		Name           string            `yaml:"name"`
		MinOrders      int               `yaml:"min_orders"`
		MinSpentCents  int64             `yaml:"min_spent_cents"`
		RequiredCohort string            `yaml:"required_cohort"`
		Default        bool              `yaml:"default"`
		Benefits       map[string]string `yaml:"benefits"`
		Plans          []struct {
			Duration   string `yaml:"duration"`
			PriceCents int64  `yaml:"price_cents"`
			Currency   string `yaml:"currency"`
		} `yaml:"plans"`
	} `yaml:"tiers"`
}

// LoadCatalogFile reads and validates a YAML catalog definition.
// The returned catalog has tier ranks assigned.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	catalog := &Catalog{}
	for _, ft := range file.Tiers {
		catalog.Tiers = append(catalog.Tiers, Tier{
			Name:           ft.Name,
			MinOrders:      ft.MinOrders,
			MinSpent:       ft.MinSpentCents,
			RequiredCohort: ft.RequiredCohort,
			Benefits:       ft.Benefits,
			Default:        ft.Default,
		})

		for _, fp := range ft.Plans {
			duration, err := ParseDuration(fp.Duration)
			if err != nil {
				return nil, errors.Join(err, fmt.Errorf("tier %q: duration %q", ft.Name, fp.Duration))
			}
			currency := fp.Currency
			if currency == "" {
				currency = "USD"
			}
			catalog.Plans = append(catalog.Plans, Plan{
				ID:       PlanID(ft.Name, duration),
				TierName: ft.Name,
				Duration: duration,
				Price:    Money{Amount: fp.PriceCents, Currency: currency},
			})
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate checks the catalog invariants and assigns tier ranks.
//
// Rank follows the spend thresholds: tiers are sorted by ascending minimum
// spend (then minimum orders, then name, to keep the order deterministic) and
// numbered from 1. Two tiers with identical minimum spend would make the
// ranking ambiguous and are rejected outright.
func (c *Catalog) Validate() error {
	if len(c.Tiers) == 0 {
		return ErrEmptyTierCatalog
	}

	seenNames := make(map[string]struct{}, len(c.Tiers))
	defaults := 0
	for _, t := range c.Tiers {
		key := strings.ToLower(t.Name)
		if _, dup := seenNames[key]; dup {
			return errors.Join(ErrDuplicateTierName, fmt.Errorf("tier %q", t.Name))
		}
		seenNames[key] = struct{}{}

		if t.Default {
			defaults++
			if t.MinOrders != 0 || t.MinSpent != 0 || t.RequiredCohort != "" {
				return errors.Join(ErrDefaultTierThresholds, fmt.Errorf("tier %q", t.Name))
			}
		}
	}
	if defaults == 0 {
		return ErrNoDefaultTier
	}
	if defaults > 1 {
		return ErrMultipleDefaultTiers
	}

	seenSpend := make(map[int64]string, len(c.Tiers))
	for _, t := range c.Tiers {
		if other, dup := seenSpend[t.MinSpent]; dup {
			return errors.Join(ErrAmbiguousTierRank, fmt.Errorf("tiers %q and %q both require %d", other, t.Name, t.MinSpent))
		}
		seenSpend[t.MinSpent] = t.Name
	}

	slices.SortFunc(c.Tiers, func(a, b Tier) int {
		if v := cmp.Compare(a.MinSpent, b.MinSpent); v != 0 {
			return v
		}
		if v := cmp.Compare(a.MinOrders, b.MinOrders); v != 0 {
			return v
		}
		return strings.Compare(a.Name, b.Name)
	})
	for i := range c.Tiers {
		c.Tiers[i].Rank = i + 1
	}

	seenPlans := make(map[string]struct{}, len(c.Plans))
	for i, p := range c.Plans {
		if !p.Duration.Valid() {
			return errors.Join(ErrUnknownDuration, fmt.Errorf("plan %q", p.Name()))
		}
		if _, ok := seenNames[strings.ToLower(p.TierName)]; !ok {
			return errors.Join(ErrUnknownPlanTier, fmt.Errorf("plan %q", p.Name()))
		}
		key := strings.ToLower(p.TierName) + ":" + string(p.Duration)
		if _, dup := seenPlans[key]; dup {
			return errors.Join(ErrDuplicatePlan, fmt.Errorf("plan %q", p.Name()))
		}
		seenPlans[key] = struct{}{}

		if p.ID == uuid.Nil {
			c.Plans[i].ID = PlanID(p.TierName, p.Duration)
		}
	}

	return nil
}

// Seed upserts the catalog into storage. Safe to run on every startup since
// tier names and plan identities are stable.
func (c *Catalog) Seed(ctx context.Context, store Storage) error {
	for i := range c.Tiers {
		if _, err := store.SaveTier(ctx, &c.Tiers[i]); err != nil {
			return fmt.Errorf("seed tier %q: %w", c.Tiers[i].Name, err)
		}
	}
	for i := range c.Plans {
		if _, err := store.SavePlan(ctx, &c.Plans[i]); err != nil {
			return fmt.Errorf("seed plan %q: %w", c.Plans[i].Name(), err)
		}
	}
	return nil
}
