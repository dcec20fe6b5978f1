package individuallending

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"portfolio/internal/products"
)

// RepaymentPeriod is one scheduled interval of a case's repayment schedule
// together with its computed cost component aggregate.
type RepaymentPeriod struct {
	Sequence       int
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Components     *CostComponents
}

// CaseParameters is the individual-lending parameter payload carried on a
// case record as JSON.
type CaseParameters struct {
	MaximumBalance decimal.Decimal `json:"maximumBalance"`
	TermRange      int             `json:"termRange"`
	PaymentSize    decimal.Decimal `json:"paymentSize"`
}

// ParseCaseParameters decodes the parameter payload of a case.
func ParseCaseParameters(raw string) (CaseParameters, error) {
	var params CaseParameters
	if raw == "" {
		return params, fmt.Errorf("case parameters are empty")
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return params, fmt.Errorf("parse case parameters: %w", err)
	}
	if params.TermRange <= 0 {
		return params, fmt.Errorf("term range must be positive")
	}
	return params, nil
}

// Planner computes the repayment schedule for a case from the product's
// charge definitions. The per-charge formulas here cover the fixed and
// proportional methods; each period's balance adjustment is the sum of the
// signed per-charge effects, which keeps the aggregate's consistency
// contract checkable.
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

// Plan produces one CostComponents aggregate per repayment period. The
// schedule is rebuilt wholesale; callers replace any previous schedule rather
// than editing periods in place.
func (p *Planner) Plan(product *products.Product, params CaseParameters) ([]RepaymentPeriod, error) {
	if product.TermRangeMaximum > 0 && params.TermRange > product.TermRangeMaximum {
		return nil, fmt.Errorf("term range %d exceeds product maximum %d",
			params.TermRange, product.TermRangeMaximum)
	}
	balance := params.MaximumBalance
	periods := make([]RepaymentPeriod, 0, params.TermRange)

	for sequence := 1; sequence <= params.TermRange; sequence++ {
		pairs := make([]ChargeComponent, 0, len(product.ChargeDefinitions))
		adjustment := decimal.Zero

		for _, charge := range product.ChargeDefinitions {
			amount := chargeAmount(charge, balance, params)
			pairs = append(pairs, ChargeComponent{
				Charge:    charge,
				Component: CostComponent{Amount: amount},
			})
			if charge.ReducesBalance {
				adjustment = adjustment.Sub(amount)
			} else {
				adjustment = adjustment.Add(amount)
			}
		}

		components, err := NewCostComponents(pairs, adjustment)
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", sequence, err)
		}

		closing := balance.Add(adjustment)
		if closing.IsNegative() {
			closing = decimal.Zero
		}
		periods = append(periods, RepaymentPeriod{
			Sequence:       sequence,
			OpeningBalance: balance,
			ClosingBalance: closing,
			Components:     components,
		})
		balance = closing
	}
	return periods, nil
}

func chargeAmount(charge products.ChargeDefinition, balance decimal.Decimal, params CaseParameters) decimal.Decimal {
	switch charge.Method {
	case products.ChargeProportional:
		hundred := decimal.NewFromInt(100)
		return balance.Mul(charge.Amount).Div(hundred).Round(2)
	case products.ChargeFixed:
		if charge.ReducesBalance && !params.PaymentSize.IsZero() {
			// Repayment-style charges follow the agreed payment size, capped
			// at the remaining balance.
			if params.PaymentSize.GreaterThan(balance) {
				return balance
			}
			return params.PaymentSize
		}
		return charge.Amount
	default:
		return decimal.Zero
	}
}
