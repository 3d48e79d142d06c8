//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd
// +build darwin dragonfly freebsd linux netbsd openbsd

package storage

import (
	"errors"
	"os/user"
	"path/filepath"
	"syscall"

	"k8s.io/klog/v2"
)

// DefaultStorePath is the per user fallback when no store path is
// configured.
func DefaultStorePath() string {
	if u, err := user.Current(); err == nil {
		return filepath.Join(u.HomeDir, "gensetgateway")
	} else {
		klog.ErrorS(err, "Failed to get home dir")
		return "./gensetgateway"
	}
}

func isEphemeralError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.EINTR:
			return true
		}
	}
	return false
}
