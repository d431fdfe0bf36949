package ledger

// Rent parameters. An account must keep at least MinimumBalance(len(Data))
// lamports to remain valid; the distribution engine treats that floor as
// non-distributable.
const (
	// lamportsPerByteYear is the rent rate per account byte per year.
	lamportsPerByteYear = 3480

	// exemptionYears is how many years of rent an account must hold to be
	// exempt from collection.
	exemptionYears = 2

	// accountStorageOverhead is the metadata size charged on top of the
	// account's own data.
	accountStorageOverhead = 128
)

// MinimumBalance returns the rent-exempt floor for an account with
// dataLen bytes of data. Deterministic, ledger-defined.
func MinimumBalance(dataLen int) uint64 {
	return uint64(accountStorageOverhead+dataLen) * lamportsPerByteYear * exemptionYears
}
