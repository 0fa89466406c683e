package types

import (
	"context"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// ExecuteEVMTransactionErrorResponse execute EVM transaction error response
//
// swagger:model executeEVMTransactionErrorResponse
type ExecuteEVMTransactionErrorResponse struct {

	// normalized message of the underlying failure
	// Required: true
	Details *string `json:"details"`

	// error
	// Example: Failed to execute EVM transaction
	// Required: true
	Error *string `json:"error"`
}

// Validate validates this execute EVM transaction error response
func (m *ExecuteEVMTransactionErrorResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.validateDetails(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateError(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *ExecuteEVMTransactionErrorResponse) validateDetails(formats strfmt.Registry) error {

	if err := validate.Required("details", "body", m.Details); err != nil {
		return err
	}

	return nil
}

func (m *ExecuteEVMTransactionErrorResponse) validateError(formats strfmt.Registry) error {

	if err := validate.Required("error", "body", m.Error); err != nil {
		return err
	}

	return nil
}

// ContextValidate validates this execute EVM transaction error response based on context it is used
func (m *ExecuteEVMTransactionErrorResponse) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

// MarshalBinary interface implementation
func (m *ExecuteEVMTransactionErrorResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// UnmarshalBinary interface implementation
func (m *ExecuteEVMTransactionErrorResponse) UnmarshalBinary(b []byte) error {
	var res ExecuteEVMTransactionErrorResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
