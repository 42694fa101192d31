package tracer

import "errors"

// ErrUnsupportedExporter is returned by Setup for an unknown exporter name.
var ErrUnsupportedExporter = errors.New("unsupported exporter")
