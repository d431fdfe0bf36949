package sharestorage

import "errors"

var (
	// ErrTooManyHolders indicates a holder list longer than MaxHolders.
	ErrTooManyHolders = errors.New("sharestorage: too many holders (maximum is 16)")

	// ErrHolderAlreadyExists indicates a duplicate holder pubkey.
	ErrHolderAlreadyExists = errors.New("sharestorage: holder already exists")

	// ErrHolderNotFound indicates the holder is not in the record.
	ErrHolderNotFound = errors.New("sharestorage: holder not found")

	// ErrShareStorageDisabled indicates distribution was attempted on a
	// disabled record.
	ErrShareStorageDisabled = errors.New("sharestorage: share storage is disabled")

	// ErrUnauthorized indicates the signer is not the record's admin.
	ErrUnauthorized = errors.New("sharestorage: unauthorized (admin only)")

	// ErrInvalidShareDistribution indicates holder shares that are zero,
	// above 10,000, or do not sum to exactly 10,000 basis points.
	ErrInvalidShareDistribution = errors.New("sharestorage: invalid share distribution (total basis points must equal exactly 10,000)")

	// ErrInsufficientFunds indicates a deposit exceeding the caller's balance.
	ErrInsufficientFunds = errors.New("sharestorage: insufficient funds")

	// ErrInvalidName indicates a name outside 1..32 bytes.
	ErrInvalidName = errors.New("sharestorage: invalid name (must be between 1 and 32 bytes)")

	// ErrInvalidAmount indicates a zero deposit amount.
	ErrInvalidAmount = errors.New("sharestorage: invalid amount")

	// ErrNoHolders indicates distribution on a record with no holders.
	ErrNoHolders = errors.New("sharestorage: no holders available for distribution")

	// ErrInvalidHolderAccounts indicates the provided recipient list count
	// does not match the configured holders.
	ErrInvalidHolderAccounts = errors.New("sharestorage: invalid number of holder accounts")

	// ErrInvalidHolderAccount indicates a recipient account that does not
	// match the configured holder at its position.
	ErrInvalidHolderAccount = errors.New("sharestorage: holder account does not match expected pubkey")

	// ErrArithmeticOverflow indicates a checked arithmetic failure.
	ErrArithmeticOverflow = errors.New("sharestorage: arithmetic overflow")

	// ErrInvalidTokenMint indicates an unknown or mismatched token mint.
	ErrInvalidTokenMint = errors.New("sharestorage: invalid token mint")

	// ErrStorageNotFound indicates no storage record at the address.
	ErrStorageNotFound = errors.New("sharestorage: storage record not found")

	// ErrStorageExists indicates a record already exists at the derived
	// address, i.e. (owner, name) was already initialized.
	ErrStorageExists = errors.New("sharestorage: storage record already exists")

	// ErrInvalidAccountData indicates account bytes that do not decode as
	// the expected record type.
	ErrInvalidAccountData = errors.New("sharestorage: invalid account data")
)
