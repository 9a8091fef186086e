package source

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/go-overlay/go-overlay/source")
