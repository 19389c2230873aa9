// Package ports declares the capability interfaces the analysis pipeline can
// be extended with. The pipeline is fully functional with every port absent;
// adapters are injected, never discovered.
package ports

import "context"

// Judge is an optional semantic verification capability: given a parameter
// value and the evidence text it should be grounded in, decide whether the
// value is a legitimate reference. The lexical provenance checks consult a
// Judge only for values they could not match themselves; a nil Judge means
// pure lexical matching.
type Judge interface {
	Judge(ctx context.Context, value string, evidence string) (bool, error)
}
