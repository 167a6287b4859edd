package cfg

// Loader produces the application configuration. ViperLoader reads yaml plus environment,
// MockLoader returns fixed defaults for tests.
type Loader interface {
	Load() (*Config, error)
}

// NewLoader picks the viper loader, or the mock loader when mock is set.
func NewLoader(path string, mock bool) (Loader, error) {
	if mock {
		return NewMockLoader()
	}
	return NewViperLoader(path)
}
