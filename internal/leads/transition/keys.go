package transition

import (
	"fmt"
	"time"

	"leadflow_backend/platform/sanitize"
)

// StorageKey builds {category}/{vendorID}/{leadID}/{unixMillis}-{fileName}.
func StorageKey(category string, vendorID, leadID int64, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d/%d/%d-%s", category, vendorID, leadID, at.UnixMilli(), sanitize.FileName(fileName))
}

// keyAllocator hands out distinct keys within one transition, bumping the
// timestamp when two files would collide.
type keyAllocator struct {
	used map[string]bool
}

func newKeyAllocator() *keyAllocator {
	return &keyAllocator{used: map[string]bool{}}
}

func (k *keyAllocator) next(category string, vendorID, leadID int64, at time.Time, fileName string) string {
	for {
		key := StorageKey(category, vendorID, leadID, at, fileName)
		if !k.used[key] {
			k.used[key] = true
			return key
		}
		at = at.Add(time.Millisecond)
	}
}
