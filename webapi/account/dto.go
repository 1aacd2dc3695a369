package account

// DepositRequest is the request body for a deposit. Amount is in main
// currency units, e.g. 100.50.
type DepositRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,alpha"`
}

// TransferRequest is the request body for sending money to another account.
type TransferRequest struct {
	ToAccountNumber string  `json:"to_account_number" validate:"required,len=10,numeric"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	Currency        string  `json:"currency" validate:"omitempty,len=3,alpha"`
}
