package models

import "time"

// Health status values.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
)

// Health is the payload for liveness and readiness checks.
type Health struct {
	Status  string                 `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ProviderStatus reports one upstream provider's circuit state.
type ProviderStatus struct {
	Provider string `json:"provider"`
	State    string `json:"state"`
}

// SystemStatus is the payload for the provider status endpoint.
type SystemStatus struct {
	Status    string           `json:"status"`
	Time      time.Time        `json:"time"`
	Providers []ProviderStatus `json:"providers"`
}
