package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the Postgres-backed Store implementation. Multi-row writes run
// inside a transaction so a failed add-on insert rolls back the subscription
// row with it.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a Store backed by the given connection pool.
// Panics on a nil pool to fail fast during initialization.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	if pool == nil {
		panic("subscription: pgxpool.Pool is required")
	}
	return &PgStore{pool: pool}
}

const subscriptionColumns = `id, owner_id, provider_subscription_id, plan_id, quantity,
	last_four, brand, ends_at, trial_ends_at, next_billing_at, scheduled_changes,
	created_at, updated_at`

func (s *PgStore) GetByProviderID(ctx context.Context, providerSubscriptionID string) (*Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE provider_subscription_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, providerSubscriptionID)

	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrPersistenceFailed, err)
	}
	return sub, nil
}

func (s *PgStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, errors.Join(ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var subs []*Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, errors.Join(ErrPersistenceFailed, err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrPersistenceFailed, err)
	}
	return subs, nil
}

func (s *PgStore) ListAddOns(ctx context.Context, subscriptionID uuid.UUID) ([]*AddOn, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, subscription_id, provider_addon_id, quantity, created_at, updated_at
		FROM addons
		WHERE subscription_id = $1
		ORDER BY created_at`, subscriptionID)
	if err != nil {
		return nil, errors.Join(ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var addOns []*AddOn
	for rows.Next() {
		var a AddOn
		if err := rows.Scan(&a.ID, &a.SubscriptionID, &a.ProviderAddOnID, &a.Quantity, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, errors.Join(ErrPersistenceFailed, err)
		}
		addOns = append(addOns, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrPersistenceFailed, err)
	}
	return addOns, nil
}

func (s *PgStore) CreateWithAddOns(ctx context.Context, sub *Subscription, addOns []*AddOn) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		if sub.ID == uuid.Nil {
			sub.ID = uuid.New()
		}
		sub.CreatedAt = now
		sub.UpdatedAt = now

		_, err := tx.Exec(ctx, `
			INSERT INTO subscriptions (`+subscriptionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			sub.ID, sub.OwnerID, sub.ProviderSubscriptionID, sub.PlanID, sub.Quantity,
			sub.LastFour, sub.Brand, sub.EndsAt, sub.TrialEndsAt, sub.NextBillingAt,
			sub.ScheduledChanges, sub.CreatedAt, sub.UpdatedAt)
		if err != nil {
			return err
		}

		for _, addOn := range addOns {
			if addOn.ID == uuid.Nil {
				addOn.ID = uuid.New()
			}
			addOn.SubscriptionID = sub.ID
			addOn.CreatedAt = now
			addOn.UpdatedAt = now

			_, err := tx.Exec(ctx, `
				INSERT INTO addons (id, subscription_id, provider_addon_id, quantity, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				addOn.ID, addOn.SubscriptionID, addOn.ProviderAddOnID, addOn.Quantity,
				addOn.CreatedAt, addOn.UpdatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PgStore) Update(ctx context.Context, sub *Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions
		SET plan_id = $2, quantity = $3, last_four = $4, brand = $5, ends_at = $6,
			trial_ends_at = $7, next_billing_at = $8, scheduled_changes = $9, updated_at = $10
		WHERE id = $1`,
		sub.ID, sub.PlanID, sub.Quantity, sub.LastFour, sub.Brand, sub.EndsAt,
		sub.TrialEndsAt, sub.NextBillingAt, sub.ScheduledChanges, sub.UpdatedAt)
	if err != nil {
		return errors.Join(ErrPersistenceFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *PgStore) DeleteWithAddOns(ctx context.Context, subscriptionID uuid.UUID) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM addons WHERE subscription_id = $1`, subscriptionID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, subscriptionID)
		return err
	})
}

func (s *PgStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Join(ErrPersistenceFailed, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return errors.Join(ErrPersistenceFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrPersistenceFailed, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*Subscription, error) {
	var sub Subscription
	err := row.Scan(
		&sub.ID, &sub.OwnerID, &sub.ProviderSubscriptionID, &sub.PlanID, &sub.Quantity,
		&sub.LastFour, &sub.Brand, &sub.EndsAt, &sub.TrialEndsAt, &sub.NextBillingAt,
		&sub.ScheduledChanges, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
