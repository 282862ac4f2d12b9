package services

import "errors"

var (
	// ErrEmptyProfile means no favorite id resolved to a known catalog
	// entry, so no preference profile can be formed. It is a request-level
	// error, distinct from a successful-but-empty recommendation list.
	ErrEmptyProfile = errors.New("no favorite ids resolve to known catalog entries")

	// ErrUnknownUser means the requested user id has no learned latent
	// vector in the trained model.
	ErrUnknownUser = errors.New("user id not present in trained model")
)
