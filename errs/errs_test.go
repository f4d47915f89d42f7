// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package errs

import (
	"errors"
	"testing"
)

func TestOfMatchesWrappedKind(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(InvalidSPS, base, "could not parse SPS")
	kind, ok := Of(err)
	if !ok {
		t.Fatal("expected Of to recognize *Error")
	}
	if kind != InvalidSPS {
		t.Errorf("expected InvalidSPS got %v", kind)
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	base := errors.New("underlying")
	err := Wrap(OutputTooSmall, base, "buffer too small")
	if !errors.Is(err, base) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}

func TestNewHasNoCause(t *testing.T) {
	err := New(InvalidViewport, "yaw %f out of range", 200.0)
	if err.Unwrap() != nil {
		t.Error("expected New() error to have no cause")
	}
	if err.Kind != InvalidViewport {
		t.Errorf("expected InvalidViewport got %v", err.Kind)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		NullInput:       "NullInput",
		InvalidViewport: "InvalidViewport",
		LayoutOverflow:  "LayoutOverflow",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
