package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/twigprompt/twig/internal/config"
)

type fakeBatteryFS struct {
	names []string
	attrs map[string]map[string]string
	err   error
}

func (f *fakeBatteryFS) Batteries() ([]string, error) {
	return f.names, f.err
}

func (f *fakeBatteryFS) ReadAttr(battery, attr string) (string, error) {
	if m, ok := f.attrs[battery]; ok {
		if v, ok := m[attr]; ok {
			return v, nil
		}
	}
	return "", errors.New("no such attribute")
}

func TestBatteryProviderDischarging(t *testing.T) {
	fs := &fakeBatteryFS{
		names: []string{"BAT0"},
		attrs: map[string]map[string]string{
			"BAT0": {
				"capacity":  "73",
				"status":    "Discharging",
				"power_now": "15000000",
			},
		},
	}
	p := NewBatteryProviderWithFS(fs)
	vars, err := p.Collect(context.Background(), &config.Config{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vars["battery_percentage"] != "73%" {
		t.Errorf("battery_percentage = %q, want 73%%", vars["battery_percentage"])
	}
	if vars["battery_status"] != "Discharging" {
		t.Errorf("battery_status = %q", vars["battery_status"])
	}
	if vars["battery_power"] != "-15.0W" {
		t.Errorf("battery_power = %q, want -15.0W", vars["battery_power"])
	}
	if vars["battery_power_discharging"] != "-15.0W" {
		t.Errorf("battery_power_discharging = %q", vars["battery_power_discharging"])
	}
	if _, ok := vars["battery_power_charging"]; ok {
		t.Error("did not expect battery_power_charging while discharging")
	}
}

func TestBatteryProviderChargingFallsBackToCurrentTimesVoltage(t *testing.T) {
	fs := &fakeBatteryFS{
		names: []string{"BAT0"},
		attrs: map[string]map[string]string{
			"BAT0": {
				"capacity":    "50",
				"status":      "Charging",
				"current_now": "2000000",
				"voltage_now": "5000000",
			},
		},
	}
	p := NewBatteryProviderWithFS(fs)
	vars, err := p.Collect(context.Background(), &config.Config{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vars["battery_power_charging"] != "+10.0W" {
		t.Errorf("battery_power_charging = %q, want +10.0W", vars["battery_power_charging"])
	}
}

func TestBatteryProviderNoBatterySilent(t *testing.T) {
	p := NewBatteryProviderWithFS(&fakeBatteryFS{})
	vars, err := p.Collect(context.Background(), &config.Config{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vars) != 0 {
		t.Errorf("expected empty vars, got %v", vars)
	}
}

func TestBatteryProviderNoBatteryErrorsWhenValidating(t *testing.T) {
	p := NewBatteryProviderWithFS(&fakeBatteryFS{})
	_, err := p.Collect(context.Background(), &config.Config{}, true)
	if err == nil {
		t.Error("expected error in validate mode")
	}
}

func TestBatteryProviderListErrorPropagatesWhenValidating(t *testing.T) {
	p := NewBatteryProviderWithFS(&fakeBatteryFS{err: errors.New("sysfs unavailable")})
	_, err := p.Collect(context.Background(), &config.Config{}, true)
	if err == nil {
		t.Error("expected error in validate mode")
	}
}

func TestBatteryProviderNegligiblePowerOmitted(t *testing.T) {
	fs := &fakeBatteryFS{
		names: []string{"BAT0"},
		attrs: map[string]map[string]string{
			"BAT0": {
				"capacity":  "99",
				"status":    "Full",
				"power_now": "0",
			},
		},
	}
	p := NewBatteryProviderWithFS(fs)
	vars, err := p.Collect(context.Background(), &config.Config{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := vars["battery_power"]; ok {
		t.Error("expected negligible power to be omitted")
	}
}

func TestBatteryProviderCacheableAndTTL(t *testing.T) {
	p := NewBatteryProvider()
	if !p.Cacheable() {
		t.Error("battery provider should be cacheable")
	}
	if p.CacheTTL() <= 0 {
		t.Error("expected positive cache TTL")
	}
}
