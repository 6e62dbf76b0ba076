package driven

// ConfigStore is a flat key/value view of the settings file. Keys use dots
// for sections ("safety.backend", "scoring.weights.imprint_front").
//
// Typed getters return the zero value for a missing key or a value of the
// wrong type, so callers apply their own defaults.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value under key and persists it.
	Set(key string, value any) error

	// Save writes all values to the backing file.
	Save() error

	// Load re-reads the backing file, replacing values in memory.
	Load() error

	// Path is the backing file location, for display.
	Path() string
}
