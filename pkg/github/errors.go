// Package github fetches shared configuration records from GitHub
// repositories, so a team-published record can participate in a merge like any
// local copy.
package github

import "github.com/cockroachdb/errors"

var (
	ErrTokenNotFound = errors.New(
		"GitHub token not found: set GITHUB_TOKEN or GH_TOKEN",
	)
	ErrValidatingToken = errors.New("failed to validate GitHub token")
	ErrRecordNotFound  = errors.New("configuration record not found in repository")
)
