package handler

import (
	"strings"

	"portfolio/internal/cases"
	domainerrors "portfolio/pkg/domain-errors"
)

// CreateCaseRequest is the HTTP request body for POST /products/{p}/cases.
// Audit and state fields are accepted here so the service can reject
// pre-populated values explicitly instead of silently dropping them.
type CreateCaseRequest struct {
	Identifier        string  `json:"identifier"`
	ProductIdentifier string  `json:"productIdentifier,omitempty"`
	CurrentState      *string `json:"currentState,omitempty"`
	Parameters        string  `json:"parameters,omitempty"`
	CreatedBy         *string `json:"createdBy,omitempty"`
	CreatedOn         *string `json:"createdOn,omitempty"`
	LastModifiedBy    *string `json:"lastModifiedBy,omitempty"`
	LastModifiedOn    *string `json:"lastModifiedOn,omitempty"`
}

// Validate checks the request's own shape; cross-record rules live in the
// service.
func (r *CreateCaseRequest) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "identifier is required")
	}
	return nil
}

// ToDraft converts the request to the domain draft payload.
func (r *CreateCaseRequest) ToDraft() cases.Draft {
	return cases.Draft{
		Identifier:        r.Identifier,
		ProductIdentifier: r.ProductIdentifier,
		CurrentState:      r.CurrentState,
		Parameters:        r.Parameters,
		CreatedBy:         r.CreatedBy,
		CreatedOn:         r.CreatedOn,
		LastModifiedBy:    r.LastModifiedBy,
		LastModifiedOn:    r.LastModifiedOn,
	}
}

// ChangeCaseRequest is the HTTP request body for PUT /products/{p}/cases/{c}.
type ChangeCaseRequest struct {
	Identifier        string `json:"identifier"`
	ProductIdentifier string `json:"productIdentifier"`
	Parameters        string `json:"parameters,omitempty"`
}

func (r *ChangeCaseRequest) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "identifier is required")
	}
	if strings.TrimSpace(r.ProductIdentifier) == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "productIdentifier is required")
	}
	return nil
}

// ToCase converts the request to the domain update payload.
func (r *ChangeCaseRequest) ToCase() cases.Case {
	return cases.Case{
		Identifier:        r.Identifier,
		ProductIdentifier: r.ProductIdentifier,
		Parameters:        r.Parameters,
	}
}

// CommandRequest is the HTTP request body for POST
// /products/{p}/cases/{c}/commands.
type CommandRequest struct {
	CommandID string `json:"commandId,omitempty"`
	Action    string `json:"action"`
	Note      string `json:"note,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

func (r *CommandRequest) Validate() error {
	r.Action = strings.TrimSpace(r.Action)
	if r.Action == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "action is required")
	}
	return nil
}

// ToCommand converts the request to the domain command.
func (r *CommandRequest) ToCommand() cases.Command {
	return cases.Command{
		CommandID: r.CommandID,
		Action:    cases.Action(r.Action),
		Note:      r.Note,
		CreatedBy: r.CreatedBy,
	}
}
