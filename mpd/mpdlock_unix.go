// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

//go:build !windows

package mpd

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/galvcast/omafplan/errs"
)

// lockForUpdate takes an advisory exclusive flock on f, blocking until
// held, so a concurrent reader (or a second live-update tick) never
// observes a torn MPD write. Matches the teacher's sys_unix.go /
// sys_windows.go platform split for OS-specific syscalls.
func lockForUpdate(f *os.File) (unlockFn func() error, err error) {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return nil, errs.Wrap(errs.CreateFolderFailure, err, "locking mpd file for update")
	}
	return func() error {
		return unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}, nil
}
