package membership

import "errors"

var (
	ErrUserNotFound         = errors.New("membership user not found")
	ErrPlanNotFound         = errors.New("membership plan not found")
	ErrTierNotFound         = errors.New("membership tier not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrIneligible is returned when a user tries to subscribe to a plan whose
	// tier outranks the tier they currently qualify for. Buying at or below
	// the qualified tier is always permitted.
	ErrIneligible = errors.New("user is not eligible for the plan's tier")

	// ErrVersionConflict signals that the subscription record was modified by
	// a concurrent writer between read and write. The caller may retry.
	ErrVersionConflict = errors.New("subscription was modified concurrently")

	ErrEmailAlreadyUsed = errors.New("email address is already registered")
	ErrInvalidUserData  = errors.New("user name and email are required")
	ErrInvalidOrder     = errors.New("order amount must be positive")

	// Catalog configuration errors. These indicate seed-data defects and are
	// fatal rather than retryable.
	ErrEmptyTierCatalog      = errors.New("tier catalog is empty")
	ErrNoDefaultTier         = errors.New("tier catalog has no default tier")
	ErrMultipleDefaultTiers  = errors.New("tier catalog has more than one default tier")
	ErrDefaultTierThresholds = errors.New("default tier must have zero qualification thresholds")
	ErrDuplicateTierName     = errors.New("tier names must be unique")
	ErrAmbiguousTierRank     = errors.New("tiers share the same minimum spend, ranking is ambiguous")
	ErrUnknownDuration       = errors.New("unknown billing duration")
	ErrUnknownPlanTier       = errors.New("plan references a tier that is not in the catalog")
	ErrDuplicatePlan         = errors.New("tier already has a plan with this billing duration")
)
