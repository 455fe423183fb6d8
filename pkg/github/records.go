package github

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v84/github"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
	"github.com/smykla-skalski/svcsync/pkg/store"
)

// DefaultRecordPath is where shared records conventionally live in a repo.
const DefaultRecordPath = ".config/services.json"

// FetchRecord downloads and parses a configuration record from a repository
// path on the default branch. Returns ErrRecordNotFound when the path does not
// exist.
func FetchRecord(
	ctx context.Context,
	client *Client,
	owner, repo, path string,
) (*configtypes.ConfigurationRecord, error) {
	if path == "" {
		path = DefaultRecordPath
	}

	fileContent, _, _, err := client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if isNotFoundError(err) {
			return nil, errors.Wrapf(ErrRecordNotFound, "%s in %s/%s", path, owner, repo)
		}

		return nil, errors.Wrapf(err, "fetching %s from %s/%s", path, owner, repo)
	}

	if fileContent == nil {
		return nil, errors.Newf("%s is a directory, expected file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, errors.Wrap(err, "decoding file content")
	}

	record, err := store.Parse([]byte(content))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing record from %s/%s", owner, repo)
	}

	client.log.Debug("fetched remote record",
		"repo", owner+"/"+repo,
		"path", path,
		"services", len(record.Services),
	)

	return record, nil
}

func isNotFoundError(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}

	return false
}
