package models

// ServiceConfig is the configuration of one optional pod service.
type ServiceConfig struct {
	Enabled bool `json:"enabled"`
}

// Services maps service name (biometrics, sentry, ...) to its configuration.
type Services map[string]ServiceConfig

// BiometricsEnabled reports whether the biometrics subsystem is enabled.
func (s Services) BiometricsEnabled() bool {
	return s["biometrics"].Enabled
}
