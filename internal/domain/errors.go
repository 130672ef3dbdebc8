package domain

import "errors"

var (
	ErrProofRequired = errors.New("proof required")
	ErrProofInvalid  = errors.New("proof invalid")
	ErrNoKeySetURL   = errors.New("discovery document has no key set url")
	ErrNotFound      = errors.New("not found")
)
