package service

import (
	"github.com/google/uuid"
	"github.com/itchan-dev/anonboard/shared/errors"
)

// canonicalId normalizes a client supplied id. Anything that is not a uuid
// can't name a stored record, so it is reported as not found.
func canonicalId(id string, what string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", errors.NotFound(what + " not found")
	}
	return parsed.String(), nil
}
