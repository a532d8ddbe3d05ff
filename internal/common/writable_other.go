//go:build !unix

package common

import "os"

// canWrite has no access(2) here, so it creates and removes a temp file.
func canWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".imv-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
