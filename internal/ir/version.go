package ir

// Version constants for the IR schema and the generator.
const (
	// IRVersion is the compiled-model schema version.
	IRVersion = "1"

	// EngineVersion is the rxnet generator version.
	EngineVersion = "0.1.0"
)
