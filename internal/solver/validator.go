package solver

import (
	"github.com/bufferlabs/buffer-solver/internal/domain"
)

// ValidateAuction checks the semantic invariants a structurally valid
// auction can still break. Violations make the auction unsolvable and
// map to a semantic error at the boundary. Advisories are findings the
// solver tolerates: they are logged and solving proceeds.
func ValidateAuction(a *domain.Auction) ([]domain.Violation, []domain.Advisory) {
	var violations []domain.Violation
	var advisories []domain.Advisory

	seen := make(map[domain.OrderUID]bool, len(a.Orders))
	for _, o := range a.Orders {
		if seen[o.UID] {
			violations = append(violations, domain.NewViolation(
				domain.ViolationDuplicateUID, o.UID,
				"order %s appears more than once", o.UID))
		}
		seen[o.UID] = true

		if o.SellToken == o.BuyToken {
			violations = append(violations, domain.NewViolation(
				domain.ViolationSelfTrade, o.UID,
				"order %s sells and buys the same token %s", o.UID, o.SellToken))
		}
		if o.SellAmount.IsZero() {
			violations = append(violations, domain.NewViolation(
				domain.ViolationZeroAmount, o.UID,
				"order %s has a zero sellAmount", o.UID))
		}
		if o.BuyAmount.IsZero() {
			violations = append(violations, domain.NewViolation(
				domain.ViolationZeroAmount, o.UID,
				"order %s has a zero buyAmount", o.UID))
		}

		// Orders that expire before the driver's deadline can lapse while
		// the settlement is in flight. That is the driver's call to make,
		// so it is reported but never rejected.
		if !a.Deadline.IsZero() && o.ValidTo < a.Deadline.Unix() {
			advisories = append(advisories, domain.NewAdvisory(
				domain.AdvisoryStaleOrder, o.UID,
				"order %s expires at %d, before the auction deadline", o.UID, o.ValidTo))
		}

		// Tokens missing from the reference map are untrusted, not
		// unroutable: internalization is off the table but the order can
		// still settle.
		if len(a.Tokens) > 0 {
			if _, ok := a.Tokens[o.SellToken]; !ok {
				advisories = append(advisories, domain.NewAdvisory(
					domain.AdvisoryUnknownToken, o.UID,
					"sell token %s is not in the token list", o.SellToken))
			}
			if _, ok := a.Tokens[o.BuyToken]; !ok {
				advisories = append(advisories, domain.NewAdvisory(
					domain.AdvisoryUnknownToken, o.UID,
					"buy token %s is not in the token list", o.BuyToken))
			}
		}
	}
	return violations, advisories
}
