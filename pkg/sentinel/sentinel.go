package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services and handlers can translate
// them into transport-level responses with errors.Is.
//
// - ErrNotFound: entity does not exist in the store or cache
// - ErrUnavailable: backing service (store, queue, cache) unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
