package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan describes a subscription plan known to the application. The ID must
// match the provider's plan ID so checkout and webhook payloads map back
// directly. The catalog is optional: a Subscriber without one only checks
// that a plan ID is present and lets the provider reject unknown plans.
type Plan struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	TrialDays   int    `yaml:"trial_days"`
	Public      bool   `yaml:"public"`
}

// TrialEndsAt calculates when a trial started at the given time ends.
// Returns startedAt unchanged if the plan has no trial.
func (p Plan) TrialEndsAt(startedAt time.Time) time.Time {
	if p.TrialDays <= 0 {
		return startedAt
	}
	return startedAt.AddDate(0, 0, p.TrialDays).UTC()
}

// PlansSource defines how plan definitions are loaded into a catalog.
type PlansSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is an in-memory, read-only plan lookup built once at startup.
type Catalog struct {
	plans map[string]Plan
}

// NewCatalog loads and validates plan definitions from the given source.
func NewCatalog(ctx context.Context, src PlansSource) (*Catalog, error) {
	if src == nil {
		panic("subscription: PlansSource is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	for id, plan := range plans {
		if plan.ID != id {
			return nil, errors.Join(ErrFailedToLoadPlans,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", id, plan.ID))
		}
		if plan.TrialDays < 0 {
			return nil, errors.Join(ErrFailedToLoadPlans,
				fmt.Errorf("plan %s has negative trial days: %d", id, plan.TrialDays))
		}
	}

	return &Catalog{plans: plans}, nil
}

// Verify checks that a plan ID exists in the catalog.
func (c *Catalog) Verify(planID string) error {
	if _, ok := c.plans[planID]; !ok {
		return ErrPlanNotFound
	}
	return nil
}

// Get returns a plan by ID.
func (c *Catalog) Get(planID string) (Plan, bool) {
	plan, ok := c.plans[planID]
	return plan, ok
}

// YAMLPlansSource loads plan definitions from a YAML document of the form:
//
//	plans:
//	  - id: cbdemo_free
//	    name: Free
//	  - id: cbdemo_hustle
//	    name: Hustle
//	    trial_days: 14
type YAMLPlansSource struct {
	r io.Reader
}

// NewYAMLPlansSource reads plans from an arbitrary reader.
func NewYAMLPlansSource(r io.Reader) *YAMLPlansSource {
	return &YAMLPlansSource{r: r}
}

// NewYAMLPlansFile reads plans from a file on disk.
func NewYAMLPlansFile(path string) (*YAMLPlansSource, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return &YAMLPlansSource{r: f}, f.Close, nil
}

func (s *YAMLPlansSource) Load(_ context.Context) (map[string]Plan, error) {
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.NewDecoder(s.r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode plans yaml: %w", err)
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, plan := range doc.Plans {
		if plan.ID == "" {
			return nil, errors.New("plan with empty ID in catalog")
		}
		plans[plan.ID] = plan
	}
	return plans, nil
}
