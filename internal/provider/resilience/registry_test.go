package resilience_test

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargespot/chargespot/internal/provider/resilience"
)

func registered(t *testing.T, registry *resilience.Registry, name string) *resilience.Client {
	t.Helper()
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = registry
	return resilience.NewClient(cfg)
}

// onlyHealth returns the single provider snapshot in registry.
func onlyHealth(t *testing.T, registry *resilience.Registry) *resilience.ProviderHealth {
	t.Helper()
	all := registry.GetAllHealth()
	require.Len(t, all, 1)
	return all[0]
}

func TestRegistry_Register(t *testing.T) {
	registry := resilience.NewRegistry()
	client := registered(t, registry, "openchargemap")

	health := onlyHealth(t, registry)
	assert.Equal(t, "openchargemap", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
	assert.Equal(t, resilience.StatusHealthy, health.Status())
	assert.Equal(t, "openchargemap", client.Name())
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	registry := resilience.NewRegistry()
	_ = registered(t, registry, "openchargemap")
	registry.RecordSuccess("openchargemap")

	_ = registered(t, registry, "openchargemap")

	assert.Nil(t, onlyHealth(t, registry).LastSuccessAt, "a new client starts with no history")
}

func TestRegistry_RecordSuccess(t *testing.T) {
	registry := resilience.NewRegistry()
	_ = registered(t, registry, "openchargemap")

	assert.Nil(t, onlyHealth(t, registry).LastSuccessAt)

	registry.RecordSuccess("openchargemap")

	health := onlyHealth(t, registry)
	require.NotNil(t, health.LastSuccessAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
}

func TestRegistry_RecordFailure(t *testing.T) {
	registry := resilience.NewRegistry()
	_ = registered(t, registry, "openchargemap")

	registry.RecordFailure("openchargemap", assert.AnError)

	health := onlyHealth(t, registry)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastFailureAt, time.Second)
	assert.Equal(t, assert.AnError.Error(), health.LastError)
}

func TestRegistry_GetAllHealthSortedByName(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"provider-c", "provider-a", "provider-b"} {
		_ = registered(t, registry, name)
	}

	healthList := registry.GetAllHealth()
	require.Len(t, healthList, 3)

	names := make([]string, 0, len(healthList))
	for _, h := range healthList {
		names = append(names, h.Name)
		assert.Equal(t, gobreaker.StateClosed, h.CircuitState)
	}
	assert.Equal(t, []string{"provider-a", "provider-b", "provider-c"}, names)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.NotPanics(t, func() {
		registry.RecordSuccess("nonexistent")
		registry.RecordFailure("nonexistent", assert.AnError)
	})
	assert.Empty(t, registry.GetAllHealth())
}

func TestProviderHealth_States(t *testing.T) {
	tests := []struct {
		state      gobreaker.State
		isHealthy  bool
		isDegraded bool
		isUnhealth bool
		status     string
	}{
		{gobreaker.StateClosed, true, false, false, resilience.StatusHealthy},
		{gobreaker.StateHalfOpen, false, true, false, resilience.StatusDegraded},
		{gobreaker.StateOpen, false, false, true, resilience.StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.ProviderHealth{CircuitState: tt.state}
			assert.Equal(t, tt.isHealthy, h.IsHealthy())
			assert.Equal(t, tt.isDegraded, h.IsDegraded())
			assert.Equal(t, tt.isUnhealth, h.IsUnhealthy())
			assert.Equal(t, tt.status, h.Status())
		})
	}
}
