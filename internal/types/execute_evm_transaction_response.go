package types

import (
	"context"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// ExecuteEVMTransactionResponse execute EVM transaction response
//
// swagger:model executeEVMTransactionResponse
type ExecuteEVMTransactionResponse struct {

	// message
	// Example: EVM transaction executed successfully
	// Required: true
	Message *string `json:"message"`

	// hash of the broadcast transaction
	// Example: 0x8f1c5b0f7c1f6c1a8e2e0b5f0c6f0d1e6b7a9c0d1e2f3a4b5c6d7e8f9a0b1c2d
	// Required: true
	TxHash *string `json:"txHash"`
}

// Validate validates this execute EVM transaction response
func (m *ExecuteEVMTransactionResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.validateMessage(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateTxHash(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *ExecuteEVMTransactionResponse) validateMessage(formats strfmt.Registry) error {

	if err := validate.Required("message", "body", m.Message); err != nil {
		return err
	}

	return nil
}

func (m *ExecuteEVMTransactionResponse) validateTxHash(formats strfmt.Registry) error {

	if err := validate.Required("txHash", "body", m.TxHash); err != nil {
		return err
	}

	return nil
}

// ContextValidate validates this execute EVM transaction response based on context it is used
func (m *ExecuteEVMTransactionResponse) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

// MarshalBinary interface implementation
func (m *ExecuteEVMTransactionResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// UnmarshalBinary interface implementation
func (m *ExecuteEVMTransactionResponse) UnmarshalBinary(b []byte) error {
	var res ExecuteEVMTransactionResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
