package constant

// Build metadata, overridden at link time via -ldflags.
var (
	Revision = "unknown"
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
)
