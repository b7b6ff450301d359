package blob

import (
	"context"
	"fmt"
	"os"

	fsstore "sheetcore/internal/infra/blob/fs"
	memorystore "sheetcore/internal/infra/blob/memory"
	s3store "sheetcore/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	SHEETCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	SHEETCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./sheetdata)
//	(S3 specific variables documented in the s3 store)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("SHEETCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("SHEETCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return s3store.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem constructs a filesystem-backed Store rooted at the provided
// path. Returns the Store interface so call sites stay backend-agnostic.
func NewFilesystem(root string) (Store, error) {
	return fsstore.New(root)
}

// NewMemory returns an in-memory Store suitable for tests.
func NewMemory() Store { return memorystore.New() }

// S3Config re-exports the S3 store configuration.
type S3Config = s3store.Config

// NewS3 constructs an S3-backed Store from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return s3store.New(ctx, cfg)
}
