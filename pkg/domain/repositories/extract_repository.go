package repositories

import "github.com/vsinha/fcrecon/pkg/domain/entities"

// ExtractRepository provides access to raw forecast, consumption and mapping
// extracts.
type ExtractRepository interface {
	// LoadTable reads one extract. Spreadsheets are read from their first sheet.
	LoadTable(path string) (*entities.Table, error)

	// ListExtracts returns the readable extract files of a directory in name order.
	ListExtracts(dir string) ([]string, error)

	// Fingerprint identifies the current content of an extract. Equal
	// fingerprints mean LoadTable returns equal tables.
	Fingerprint(path string) (string, error)
}
