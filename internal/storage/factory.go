package storage

import "strings"

// NewStore creates a DocumentStore based on the configuration. An empty
// endpoint selects the in-memory store.
func NewStore(cfg *S3Config) (DocumentStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return NewMemoryStore(), nil
	}

	// Auto-detect storage type if not specified
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}

	return NewS3Store(cfg)
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
