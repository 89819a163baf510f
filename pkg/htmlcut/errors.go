package htmlcut

import "errors"

// ErrStructureTooDeep is returned when the input nests deeper than Config.MaxDepth.
// Use errors.Is(err, ErrStructureTooDeep) to check.
var ErrStructureTooDeep = errors.New("structure too deep")

// ErrUpstreamParse wraps failures of the markup parser or serializer.
var ErrUpstreamParse = errors.New("markup parse failed")

// ErrInvalidConfig is returned by New for unusable configurations.
var ErrInvalidConfig = errors.New("invalid htmlcut config")
