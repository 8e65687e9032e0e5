package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
// - ErrNotFound: participant or record does not exist in the store
var ErrNotFound = errors.New("not found")
