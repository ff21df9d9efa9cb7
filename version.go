// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tilebench

import (
	"fmt"
	"runtime/debug"
)

const root = "github.com/LynnColeArt/tilebench"

// Version returns the version of tilebench and its checksum, whether it is
// the main module (its own commands) or a dependency. The returned values
// are only valid in binaries built with module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	if b.Main.Path == root {
		return b.Main.Version, b.Main.Sum
	}
	for _, m := range b.Deps {
		if m.Path != root {
			continue
		}
		if r := m.Replace; r != nil {
			switch {
			case r.Version != "" && r.Path != "":
				return fmt.Sprintf("%s=>%s %s", m.Version, r.Path, r.Version), r.Sum
			case r.Version != "":
				return fmt.Sprintf("%s=>%s", m.Version, r.Version), r.Sum
			default:
				return fmt.Sprintf("%s=>%s", m.Version, r.Path), r.Sum
			}
		}
		return m.Version, m.Sum
	}
	return "", ""
}
