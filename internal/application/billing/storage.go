package billing

import "context"

// ProofStorage stores payment-proof files (transfer screenshots, cheque
// scans). Implementations live in infrastructure; uploads happen before the
// ledger transaction and only the resulting key is persisted.
type ProofStorage interface {
	// Upload stores the file under the given key.
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	// GenerateDownloadURL returns a time-limited URL for retrieving the proof.
	GenerateDownloadURL(ctx context.Context, storageKey string) (string, error)
}
