package lifecycle

import "spikeradar/internal/model"

// MergeStatus resolves a refreshed record's status against a local override.
//
//	source \ local | none/pending | acted_on  | dismissed
//	pending        | pending      | acted_on  | dismissed
//	acted_on       | acted_on     | acted_on  | acted_on
//	dismissed      | dismissed    | dismissed | dismissed
//
// A terminal source status always wins; otherwise a terminal local override is kept.
func MergeStatus(source, local model.Status) model.Status {
	if source.Terminal() {
		return source
	}
	if local.Terminal() {
		return local
	}
	return source
}
