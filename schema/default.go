package schema

import (
	_ "embed"
	"sync"
)

//go:embed catalog.yaml
var defaultCatalogDocument []byte

var loadDefaultOnce = sync.OnceValues(func() (*Catalog, error) {
	return Load(defaultCatalogDocument)
})

// Default returns the built-in catalog covering the common EC2, IAM, KMS, and
// Secrets Manager resource types. Loaded once per process.
func Default() (*Catalog, error) {
	return loadDefaultOnce()
}
