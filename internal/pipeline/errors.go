package pipeline

import "github.com/rotisserie/eris"

// ErrMalformedRecord marks a raw record that failed normalization
// catastrophically (no parseable name or link). Such records are dropped and
// counted, never propagated.
var ErrMalformedRecord = eris.New("pipeline: malformed record")

// ErrConfiguration marks an invalid option combination. It is fatal and
// raised before any collector runs.
var ErrConfiguration = eris.New("pipeline: invalid configuration")
