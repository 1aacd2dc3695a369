package account

// Kind classifies a ledger entry. A deposit stands alone; a transfer is a
// debit on the sender paired with a credit on the receiver under one
// reference code.
type Kind string

const (
	KindDeposit Kind = "deposit"
	KindDebit   Kind = "debit"
	KindCredit  Kind = "credit"
)

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindDeposit, KindDebit, KindCredit:
		return true
	}
	return false
}

// String returns the kind as a plain string.
func (k Kind) String() string { return string(k) }
