package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHealthState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state HealthState
		want  bool
	}{
		{
			name:  "valid healthy state",
			state: HealthStateHealthy,
			want:  true,
		},
		{
			name:  "valid degraded state",
			state: HealthStateDegraded,
			want:  true,
		},
		{
			name:  "valid unhealthy state",
			state: HealthStateUnhealthy,
			want:  true,
		},
		{
			name:  "invalid state",
			state: HealthState("invalid"),
			want:  false,
		},
		{
			name:  "empty state",
			state: HealthState(""),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("HealthState.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHealthStatus(t *testing.T) {
	before := time.Now()
	status := NewHealthStatus(HealthStateHealthy, "all good")
	after := time.Now()

	if status.State != HealthStateHealthy {
		t.Errorf("State = %v, want %v", status.State, HealthStateHealthy)
	}
	if status.Message != "all good" {
		t.Errorf("Message = %v, want %v", status.Message, "all good")
	}
	if status.CheckedAt.Before(before) || status.CheckedAt.After(after) {
		t.Errorf("CheckedAt = %v, want between %v and %v", status.CheckedAt, before, after)
	}
}

func TestHealthStatus_StateChecks(t *testing.T) {
	healthy := NewHealthStatus(HealthStateHealthy, "")
	degraded := NewHealthStatus(HealthStateDegraded, "slow")
	unhealthy := NewHealthStatus(HealthStateUnhealthy, "down")

	if !healthy.IsHealthy() || healthy.IsDegraded() || healthy.IsUnhealthy() {
		t.Error("healthy status should only report IsHealthy")
	}
	if !degraded.IsDegraded() || degraded.IsHealthy() || degraded.IsUnhealthy() {
		t.Error("degraded status should only report IsDegraded")
	}
	if !unhealthy.IsUnhealthy() || unhealthy.IsHealthy() || unhealthy.IsDegraded() {
		t.Error("unhealthy status should only report IsUnhealthy")
	}
}

func TestHealthState_JSONRoundTrip(t *testing.T) {
	status := NewHealthStatus(HealthStateDegraded, "embedder slow")

	data, err := json.Marshal(status)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded HealthStatus
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.State != status.State {
		t.Errorf("State = %v, want %v", decoded.State, status.State)
	}
	if decoded.Message != status.Message {
		t.Errorf("Message = %v, want %v", decoded.Message, status.Message)
	}
}

func TestHealthState_UnmarshalJSON_Invalid(t *testing.T) {
	var state HealthState
	if err := json.Unmarshal([]byte(`"bogus"`), &state); err == nil {
		t.Error("Unmarshal should reject an unknown health state")
	}
}
