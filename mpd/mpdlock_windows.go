// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

//go:build windows

package mpd

import (
	"os"

	"golang.org/x/sys/windows"

	"github.com/galvcast/omafplan/errs"
)

// lockForUpdate takes an advisory exclusive lock on f via LockFileEx,
// the Windows equivalent of the unix build's flock, so a concurrent
// reader never observes a torn MPD write during a live update.
func lockForUpdate(f *os.File) (unlockFn func() error, err error) {
	ol := new(windows.Overlapped)
	handle := windows.Handle(f.Fd())
	if err := windows.LockFileEx(handle, windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, ol); err != nil {
		return nil, errs.Wrap(errs.CreateFolderFailure, err, "locking mpd file for update")
	}
	return func() error {
		return windows.UnlockFileEx(handle, 0, 1, 0, ol)
	}, nil
}
