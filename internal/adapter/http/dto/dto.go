package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50,account_name"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the request body for a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// TransferRequest is the request body for sending credit. The payer is
// always the authenticated account.
type TransferRequest struct {
	PayeeID int64  `json:"payee_id" binding:"required"`
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	Message string `json:"message"`
}

// TransferResponse is the response body for a recorded transfer.
type TransferResponse struct {
	ID        int64  `json:"id"`
	PayerID   int64  `json:"payer_id"`
	PayeeID   int64  `json:"payee_id"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AccountResponse is the public view of an account, including its
// current limits so clients can size a transfer before trying it.
type AccountResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Balance      int64  `json:"balance"`
	Received     uint64 `json:"received"`
	Sent         uint64 `json:"sent"`
	SendLimit    int64  `json:"send_limit"`
	ReceiveLimit int64  `json:"receive_limit"`
	CreatedAt    string `json:"created_at"`
}

// AccountListResponse wraps the account directory.
type AccountListResponse struct {
	Items []AccountResponse `json:"items"`
	Total int               `json:"total"`
}

// TransferListResponse wraps an account's transfer history.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Total int                `json:"total"`
}

// IntegrityResponse reports the pool-wide conservation check.
type IntegrityResponse struct {
	BalanceSum int64 `json:"balance_sum"`
	Consistent bool  `json:"consistent"`
}
