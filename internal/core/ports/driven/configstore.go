package driven

// ConfigStore persists the non-secret settings.
type ConfigStore interface {
	// Get returns the stored value of key and whether it is set.
	Get(key string) (any, bool)

	// Keys returns every stored key in sorted order.
	Keys() []string

	// Set stores value under key and persists immediately.
	Set(key string, value any) error

	// Unset removes key and persists immediately.
	Unset(key string) error

	// Path returns where the settings live.
	Path() string
}
