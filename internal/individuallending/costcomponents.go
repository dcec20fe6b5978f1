// Package individuallending implements the individual-lending product
// pattern: its command dispatcher, the repayment schedule planner, and the
// per-period cost component aggregates the planner produces.
package individuallending

import (
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"portfolio/internal/products"
)

// CostComponent is the computed charge amount attributable to one charge
// definition within one repayment period.
type CostComponent struct {
	Amount decimal.Decimal `json:"amount"`
}

// ChargeComponent pairs a charge definition with its computed cost component.
type ChargeComponent struct {
	Charge    products.ChargeDefinition
	Component CostComponent
}

// CostComponents is the immutable per-period aggregate: at most one cost
// component per distinct charge definition, plus the net balance adjustment
// the period's charges cause. Construction is the only mutation point;
// recomputation replaces the whole value rather than editing it.
type CostComponents struct {
	components        map[string]ChargeComponent
	balanceAdjustment decimal.Decimal
}

// NewCostComponents builds an aggregate from charge/component pairs. The
// caller (the planner) is responsible for keeping balanceAdjustment equal to
// the combination rule over the pairs; duplicate charge identifiers are an
// error because they would silently drop a component.
func NewCostComponents(pairs []ChargeComponent, balanceAdjustment decimal.Decimal) (*CostComponents, error) {
	components := make(map[string]ChargeComponent, len(pairs))
	for _, pair := range pairs {
		id := pair.Charge.Identifier
		if _, exists := components[id]; exists {
			return nil, fmt.Errorf("duplicate charge definition %q in period aggregate", id)
		}
		components[id] = pair
	}
	return &CostComponents{
		components:        components,
		balanceAdjustment: balanceAdjustment,
	}, nil
}

// All yields each (charge definition, cost component) pair. Iteration is
// side-effect free and restartable; order is not semantically significant and
// consumers needing ordered output must sort at their own boundary.
func (c *CostComponents) All() iter.Seq2[products.ChargeDefinition, CostComponent] {
	return func(yield func(products.ChargeDefinition, CostComponent) bool) {
		for _, pair := range c.components {
			if !yield(pair.Charge, pair.Component) {
				return
			}
		}
	}
}

// Component looks up the cost component for one charge definition.
func (c *CostComponents) Component(chargeIdentifier string) (CostComponent, bool) {
	pair, ok := c.components[chargeIdentifier]
	return pair.Component, ok
}

// Len returns the number of distinct charge definitions in the period.
func (c *CostComponents) Len() int {
	return len(c.components)
}

// BalanceAdjustment is the net principal change attributable to this period's
// charges. Negative values reduce the outstanding balance.
func (c *CostComponents) BalanceAdjustment() decimal.Decimal {
	return c.balanceAdjustment
}
