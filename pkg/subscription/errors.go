package subscription

import "errors"

var (
	ErrMissingPlan   = errors.New("no plan was set to assign to the subscriber")
	ErrPlanNotFound  = errors.New("subscription plan not found in catalog")
	ErrOwnerMismatch = errors.New("checkout was completed by a different owner")

	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPersistenceFailed    = errors.New("failed to persist subscription state")

	ErrMissingProviderSubscription = errors.New("provider response contains no subscription")
	ErrMissingProviderCustomer     = errors.New("provider response contains no customer")
	ErrCheckoutIncomplete          = errors.New("hosted checkout did not produce a subscription")

	ErrFailedToLoadPlans = errors.New("failed to load subscription plans")
)
