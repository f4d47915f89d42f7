// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package layout

import "github.com/galvcast/omafplan/errs"

// factory constructs a fresh, uninitialised Generator.
type factory func() Generator

var registry = map[string]factory{
	"column": func() Generator { return &columnGenerator{} },
}

// Load resolves a Generator by name. Unlike the C++ original's dlopen
// plugin boundary, every generator in this module is compiled in; the
// name is kept as the extension point so a caller's config can still
// select between packing strategies without touching code that builds
// the planner.
func Load(name string) (Generator, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errs.New(errs.MissingPlugin, "no packing generator registered under name %q", name)
	}
	return f(), nil
}
