// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package buildinfo holds version information stamped in at build time.
package buildinfo

import (
	"encoding/json"
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""

	// UserAgent identifies this build in outgoing HTTP requests.
	UserAgent string
)

func init() {
	UserAgent = fmt.Sprintf("vidra/%s (%s %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// String returns a human-readable multi-line version summary.
func String() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild date: %s\n", Version, Commit, Date)
}

type info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// JSON returns the version summary as a JSON document.
func JSON() ([]byte, error) {
	return json.Marshal(info{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	})
}
