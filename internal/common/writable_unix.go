//go:build unix

package common

import "golang.org/x/sys/unix"

func canWrite(dir string) error {
	return unix.Access(dir, unix.W_OK)
}
