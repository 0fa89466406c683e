package near

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// ExecutionStatus is the status of a transaction or receipt outcome.
// nearcore encodes it either as a bare string ("Unknown", "Started") or as an
// object with exactly one of SuccessValue, SuccessReceiptId or Failure set.
type ExecutionStatus struct {
	SuccessValue     *string         `json:"SuccessValue,omitempty"`
	SuccessReceiptID *string         `json:"SuccessReceiptId,omitempty"`
	Failure          json.RawMessage `json:"Failure,omitempty"`
	Other            string          `json:"-"`
}

func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = ExecutionStatus{Other: str}
		return nil
	}

	type plain ExecutionStatus
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.Wrap(err, "failed to decode execution status")
	}
	*s = ExecutionStatus(p)

	return nil
}

// Err returns a non-nil error if the status represents a failure or has not finished.
func (s ExecutionStatus) Err() error {
	switch {
	case len(s.Failure) > 0 && string(s.Failure) != "null":
		return &ExecutionFailure{Raw: s.Failure}
	case s.SuccessValue != nil, s.SuccessReceiptID != nil:
		return nil
	case s.Other != "":
		return errors.Errorf("transaction did not finish, status %s", s.Other)
	default:
		return errors.New("transaction has no execution status")
	}
}

// ExecutionFailure is a failed transaction or receipt.
type ExecutionFailure struct {
	Raw json.RawMessage
}

func (f *ExecutionFailure) Error() string {
	return "transaction failed: " + string(f.Raw)
}

type ExecutionOutcome struct {
	Logs        []string        `json:"logs"`
	ReceiptIDs  []string        `json:"receipt_ids"`
	GasBurnt    uint64          `json:"gas_burnt"`
	TokensBurnt string          `json:"tokens_burnt"`
	ExecutorID  string          `json:"executor_id"`
	Status      ExecutionStatus `json:"status"`
}

type ExecutionOutcomeWithID struct {
	ID        string           `json:"id"`
	BlockHash string           `json:"block_hash"`
	Outcome   ExecutionOutcome `json:"outcome"`
}

// FinalExecutionOutcome is the result of broadcast_tx_commit.
type FinalExecutionOutcome struct {
	Status      ExecutionStatus `json:"status"`
	Transaction struct {
		Hash       string `json:"hash"`
		SignerID   string `json:"signer_id"`
		ReceiverID string `json:"receiver_id"`
		Nonce      uint64 `json:"nonce"`
	} `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// SuccessValue returns the decoded return value of the transaction.
// A failed receipt anywhere in the outcome is reported as an error.
func (o *FinalExecutionOutcome) SuccessValue() ([]byte, error) {
	if err := o.Status.Err(); err != nil {
		return nil, err
	}

	for _, r := range o.ReceiptsOutcome {
		if len(r.Outcome.Status.Failure) > 0 && string(r.Outcome.Status.Failure) != "null" {
			return nil, &ExecutionFailure{Raw: r.Outcome.Status.Failure}
		}
	}

	if o.Status.SuccessValue == nil {
		return nil, errors.New("transaction has no return value")
	}

	value, err := base64.StdEncoding.DecodeString(*o.Status.SuccessValue)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction return value")
	}

	return value, nil
}
