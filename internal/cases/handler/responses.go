package handler

import (
	"sort"
	"time"

	"portfolio/internal/cases"
	"portfolio/internal/individuallending"
)

// CaseResponse is the HTTP representation of one case record.
type CaseResponse struct {
	Identifier        string     `json:"identifier"`
	ProductIdentifier string     `json:"productIdentifier"`
	CurrentState      string     `json:"currentState"`
	Parameters        string     `json:"parameters,omitempty"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	CreatedOn         *time.Time `json:"createdOn,omitempty"`
	LastModifiedBy    string     `json:"lastModifiedBy,omitempty"`
	LastModifiedOn    *time.Time `json:"lastModifiedOn,omitempty"`
}

// FromCase converts a domain case to its HTTP representation.
func FromCase(record *cases.Case) CaseResponse {
	return CaseResponse{
		Identifier:        record.Identifier,
		ProductIdentifier: record.ProductIdentifier,
		CurrentState:      string(record.CurrentState),
		Parameters:        record.Parameters,
		CreatedBy:         record.CreatedBy,
		CreatedOn:         record.CreatedOn,
		LastModifiedBy:    record.LastModifiedBy,
		LastModifiedOn:    record.LastModifiedOn,
	}
}

// FromCases converts a case list, keeping the service's ordering.
func FromCases(records []cases.Case) []CaseResponse {
	result := make([]CaseResponse, 0, len(records))
	for i := range records {
		result = append(result, FromCase(&records[i]))
	}
	return result
}

// FromActions converts the legal-action set to a sorted list so responses are
// stable across calls.
func FromActions(actions map[cases.Action]struct{}) []string {
	result := make([]string, 0, len(actions))
	for action := range actions {
		result = append(result, string(action))
	}
	sort.Strings(result)
	return result
}

// CommandResponse acknowledges an executed case command.
type CommandResponse struct {
	CommandID string `json:"commandId,omitempty"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
}

// PeriodResponse is one repayment period with its cost components.
type PeriodResponse struct {
	Sequence          int                     `json:"sequence"`
	OpeningBalance    string                  `json:"openingBalance"`
	ClosingBalance    string                  `json:"closingBalance"`
	BalanceAdjustment string                  `json:"balanceAdjustment"`
	CostComponents    []CostComponentResponse `json:"costComponents"`
}

// CostComponentResponse is one charge's computed amount within a period.
type CostComponentResponse struct {
	ChargeIdentifier string `json:"chargeIdentifier"`
	ChargeName       string `json:"chargeName"`
	Amount           string `json:"amount"`
}

// FromPeriods converts a repayment schedule, sorting each period's components
// by charge identifier since the aggregate itself is unordered.
func FromPeriods(periods []individuallending.RepaymentPeriod) []PeriodResponse {
	result := make([]PeriodResponse, 0, len(periods))
	for _, period := range periods {
		response := PeriodResponse{
			Sequence:       period.Sequence,
			OpeningBalance: period.OpeningBalance.String(),
			ClosingBalance: period.ClosingBalance.String(),
		}
		if period.Components != nil {
			response.BalanceAdjustment = period.Components.BalanceAdjustment().String()
			for charge, component := range period.Components.All() {
				response.CostComponents = append(response.CostComponents, CostComponentResponse{
					ChargeIdentifier: charge.Identifier,
					ChargeName:       charge.Name,
					Amount:           component.Amount.String(),
				})
			}
			sort.Slice(response.CostComponents, func(i, j int) bool {
				return response.CostComponents[i].ChargeIdentifier < response.CostComponents[j].ChargeIdentifier
			})
		}
		result = append(result, response)
	}
	return result
}
