// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

// API version constants.
//
// repoedit uses date-based API versioning. The client sends the version in
// the Repoedit-Version header; if none is chosen the latest is used.
const (
	// LatestVersion is the current API version.
	LatestVersion = "2026-10-15"

	// Version20261015 is the initial API version.
	Version20261015 = "2026-10-15"
)

// VersionHeader is the HTTP header used to specify the API version.
const VersionHeader = "Repoedit-Version"
