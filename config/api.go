package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public paths (health check and brand catalog are read-only, no auth)
	return []string{"/health", "/api/brands"}
}
