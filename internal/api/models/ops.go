package models

// Health represents the health status of the bridge.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall bridge status.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Session   SessionStatus    `json:"session"`
	Providers []ProviderStatus `json:"providers"`
}

// SessionStatus describes the result set currently held by the bridge.
type SessionStatus struct {
	HasResults   bool       `json:"hasResults"`
	StationCount int        `json:"stationCount"`
	FetchedAt    *Timestamp `json:"fetchedAt,omitempty"`
}

// ProviderStatus represents the status of an upstream station directory.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState,omitempty"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}
