package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/twigprompt/twig/internal/config"
)

// BatteryFS abstracts the Linux power-supply sysfs tree for tests.
type BatteryFS interface {
	// Batteries lists battery power_supply directory names (e.g. "BAT0").
	Batteries() ([]string, error)
	// ReadAttr reads one attribute file's trimmed contents, e.g.
	// ReadAttr("BAT0", "capacity") -> "85".
	ReadAttr(battery, attr string) (string, error)
}

const powerSupplyRoot = "/sys/class/power_supply"

type sysfsBatteryFS struct{}

func (sysfsBatteryFS) Batteries() ([]string, error) {
	entries, err := os.ReadDir(powerSupplyRoot)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", powerSupplyRoot, err)
	}
	var out []string
	for _, e := range entries {
		typ, err := os.ReadFile(filepath.Join(powerSupplyRoot, e.Name(), "type"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(typ)) == "Battery" {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (sysfsBatteryFS) ReadAttr(battery, attr string) (string, error) {
	data, err := os.ReadFile(filepath.Join(powerSupplyRoot, battery, attr))
	if err != nil {
		return "", fmt.Errorf("read %s/%s: %w", battery, attr, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// BatteryProvider owns the battery section.
type BatteryProvider struct {
	fs BatteryFS
}

// NewBatteryProvider returns a BatteryProvider reading the real sysfs tree.
func NewBatteryProvider() *BatteryProvider {
	return &BatteryProvider{fs: sysfsBatteryFS{}}
}

// NewBatteryProviderWithFS is used by tests to inject a fake sysfs tree.
func NewBatteryProviderWithFS(fs BatteryFS) *BatteryProvider {
	return &BatteryProvider{fs: fs}
}

func (p *BatteryProvider) Name() string { return "battery" }

func (p *BatteryProvider) Sections() []string { return []string{"battery"} }

func (p *BatteryProvider) DefaultConfig() map[string]any {
	return map[string]any{"battery": map[string]any{}}
}

func (p *BatteryProvider) Cacheable() bool         { return true }
func (p *BatteryProvider) CacheTTL() time.Duration { return 10 * time.Second }

func (p *BatteryProvider) Collect(_ context.Context, _ *config.Config, validate bool) (Vars, error) {
	vars := make(Vars)

	batteries, err := p.fs.Batteries()
	if err != nil || len(batteries) == 0 {
		if validate {
			if err == nil {
				err = fmt.Errorf("no battery present")
			}
			return nil, fmt.Errorf("battery: %w", err)
		}
		return vars, nil
	}

	name := batteries[0]

	capacity, err := p.fs.ReadAttr(name, "capacity")
	if err != nil {
		if validate {
			return nil, fmt.Errorf("battery capacity: %w", err)
		}
		return vars, nil
	}
	vars["battery_percentage"] = capacity + "%"

	status, err := p.fs.ReadAttr(name, "status")
	if err == nil {
		vars["battery_status"] = status
	} else if validate {
		return nil, fmt.Errorf("battery status: %w", err)
	}

	if power, ok := p.readPower(name, status); ok {
		vars["battery_power"] = power
		switch status {
		case "Charging":
			vars["battery_power_charging"] = power
		case "Discharging":
			vars["battery_power_discharging"] = power
		}
	}

	return vars, nil
}

// readPower computes signed wattage from power_now (microwatts) if
// present, falling back to current_now*voltage_now when it isn't.
func (p *BatteryProvider) readPower(name, status string) (string, bool) {
	microwatts, ok := p.readMicrowatts(name)
	if !ok {
		return "", false
	}
	watts := float64(microwatts) / 1_000_000
	if status == "Discharging" {
		watts = -watts
	}
	if watts < 0.1 && watts > -0.1 {
		return "", false
	}
	return fmt.Sprintf("%+.1fW", watts), true
}

func (p *BatteryProvider) readMicrowatts(name string) (int64, bool) {
	if raw, err := p.fs.ReadAttr(name, "power_now"); err == nil {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v, true
		}
	}
	curr, err := p.fs.ReadAttr(name, "current_now")
	if err != nil {
		return 0, false
	}
	volt, err := p.fs.ReadAttr(name, "voltage_now")
	if err != nil {
		return 0, false
	}
	c, err1 := strconv.ParseInt(curr, 10, 64)
	v, err2 := strconv.ParseInt(volt, 10, 64)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return (c / 1000) * (v / 1000), true
}
