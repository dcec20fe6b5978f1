package products

import (
	"github.com/shopspring/decimal"
)

// ChargeMethod selects how a charge definition is applied to a period balance.
type ChargeMethod string

const (
	// ChargeFixed applies Amount as an absolute charge per period.
	ChargeFixed ChargeMethod = "FIXED"
	// ChargeProportional applies Amount as a percentage of the running balance.
	ChargeProportional ChargeMethod = "PROPORTIONAL"
)

// ChargeDefinition describes one fee/interest rule owned by a product. The
// Identifier is the equality key everywhere a definition is used as a map key;
// the remaining fields are display and calculation metadata.
type ChargeDefinition struct {
	Identifier  string          `json:"identifier"`
	Name        string          `json:"name"`
	Method      ChargeMethod    `json:"chargeMethod"`
	Amount      decimal.Decimal `json:"amount"`
	FromAccount string          `json:"fromAccountDesignator,omitempty"`
	ToAccount   string          `json:"toAccountDesignator,omitempty"`
	// ReducesBalance marks charges whose effect lowers the outstanding balance
	// (repayments) rather than raising it (interest, fees).
	ReducesBalance bool `json:"reducesBalance,omitempty"`
}

// Product is the template cases are instantiated from.
type Product struct {
	Identifier        string             `json:"identifier"`
	Name              string             `json:"name"`
	PatternPackage    string             `json:"patternPackage"`
	TermRangeMaximum  int                `json:"termRangeMaximum"`
	ChargeDefinitions []ChargeDefinition `json:"chargeDefinitions"`
	Enabled           bool               `json:"enabled"`
}
