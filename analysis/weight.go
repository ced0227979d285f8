package analysis

import (
	"github.com/beanls/beanls/ast"
	"github.com/shopspring/decimal"
)

// Balance checking follows double-entry weight semantics: each posting
// contributes a weight to the transaction balance, and the weights must
// net to zero per currency. A cost overrides a price overrides the raw
// amount: buying 10 HOOL {518.73 USD} weighs 5187.30 USD, not 10 HOOL.

// balanceTolerance is the fixed per-currency tolerance for residuals.
var balanceTolerance = decimal.NewFromFloat(0.005)

type weight struct {
	Amount   decimal.Decimal
	Currency string
}

// postingWeight computes the weight contributed by one posting.
// Postings with an elided amount, an empty cost {}, or a merge cost
// {*} contribute nothing: their value is inferred to balance the
// transaction. The second return is false when the posting cannot be
// weighed (unparseable or currency-less amount), which makes the whole
// balance check inapplicable.
func postingWeight(posting *ast.Posting) (*weight, bool) {
	if posting.Amount == nil {
		return nil, true
	}
	if posting.Amount.Currency == "" {
		return nil, false
	}

	amount, err := posting.Amount.Decimal()
	if err != nil {
		return nil, false
	}

	cost := posting.Cost
	hasExplicitCost := cost != nil && !cost.IsEmpty() && !cost.IsMerge && cost.Amount != nil

	if cost != nil && !hasExplicitCost {
		// Empty {} or merge {*} cost: inferred at booking time.
		return nil, true
	}

	if hasExplicitCost {
		costAmount, err := cost.Amount.Decimal()
		if err != nil || cost.Amount.Currency == "" {
			return nil, false
		}
		total := costAmount
		if !cost.IsTotal {
			total = amount.Mul(costAmount)
		}
		return &weight{Amount: total, Currency: cost.Amount.Currency}, true
	}

	if posting.Price != nil {
		priceAmount, err := posting.Price.Decimal()
		if err != nil || posting.Price.Currency == "" {
			return nil, false
		}
		var value decimal.Decimal
		if posting.PriceTotal {
			// @@ total price carries the sign of the amount.
			value = priceAmount
			if amount.IsNegative() {
				value = priceAmount.Neg()
			}
		} else {
			value = amount.Mul(priceAmount)
		}
		return &weight{Amount: value, Currency: posting.Price.Currency}, true
	}

	return &weight{Amount: amount, Currency: posting.Amount.Currency}, true
}

// residuals sums the weights per currency and returns the currencies
// whose balance exceeds the tolerance, in deterministic order.
func residuals(weights []weight) []weight {
	totals := make(map[string]decimal.Decimal, 2)
	order := make([]string, 0, 2)

	for _, w := range weights {
		if _, ok := totals[w.Currency]; !ok {
			order = append(order, w.Currency)
		}
		totals[w.Currency] = totals[w.Currency].Add(w.Amount)
	}

	var out []weight
	for _, currency := range order {
		if totals[currency].Abs().GreaterThan(balanceTolerance) {
			out = append(out, weight{Amount: totals[currency], Currency: currency})
		}
	}
	return out
}
