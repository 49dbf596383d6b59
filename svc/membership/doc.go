// Package membership implements the tier-eligibility and subscription-lifecycle
// engine of the membership backend.
//
// Users accrue order statistics (count, spend, cohort) and are evaluated
// against a catalog of qualification tiers. Each tier owns purchasable plans
// with a billing duration and price. The engine decides three things:
//
//   - which single tier a user currently qualifies for (eligibility),
//   - which plans that tier lets the user purchase (the eligible tier's plans
//     plus all lower tiers' plans, so downgrades are always shoppable),
//   - how a user's one subscription record moves between ACTIVE and CANCELLED
//     as they subscribe, change plans, cancel, and resubscribe.
//
// Each user has at most one subscription record. Plan changes overwrite that
// record in place rather than appending history; concurrent writers are
// detected through an optimistic version token and rejected with
// ErrVersionConflict.
//
// # Architecture
//
//   - Service: the operation surface (subscribe, cancel, available plans, ...)
//   - Storage: the persistence collaborator contract
//   - Catalog: tier/plan seed data, validated and rank-assigned at load time
//   - CatalogCache: optional Redis read-through cache over the catalog reads
//
// Storage implementations live alongside the package: an in-memory store for
// tests and composition experiments, and a PostgreSQL store under
// membership/postgres.
//
// # Quick start
//
//	catalog, err := membership.LoadCatalogFile("configs/catalog.yaml")
//	if err != nil { ... }
//
//	store := membership.NewMemoryStorage()
//	if err := catalog.Seed(ctx, store); err != nil { ... }
//
//	svc := membership.NewService(store)
//	plans, err := svc.AvailablePlans(ctx, userID)
package membership
