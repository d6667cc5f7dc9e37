package asuswmi

// Client is the backend-agnostic surface of one WMI connection. The
// concrete connection is COM-bound to its creating thread, so callers
// never hold a Client directly: they pass closures to the Dispatcher.
type Client interface {
	// Backend reports which management interface the connection bound.
	Backend() Backend

	// DSTS reads a device status value. Rejected on the sensor-only
	// backend with ErrUnsupportedBackend.
	DSTS(deviceID uint32) (uint32, error)

	// DEVS writes a device control value and returns the resulting
	// status (or a success sentinel on the desktop backend, which
	// returns nothing usable). Rejected on the sensor-only backend.
	DEVS(deviceID, control uint32) (uint32, error)

	// DesktopFanPolicies reads the policy of every present fan header.
	// Headers answering with a nonzero error code are absent and
	// omitted, not reported.
	DesktopFanPolicies() ([]DesktopFanPolicy, error)

	// SetDesktopFanPolicy writes one fan header's policy.
	SetDesktopFanPolicy(policy DesktopFanPolicy) error

	// AsusHWSensors enumerates and reads every sensor of the
	// sensor-only backend.
	AsusHWSensors() ([]AsusHWSensor, error)

	// Close releases the COM resources.
	Close() error
}

// GetFanSpeed reads the current RPM for one fan header. The tachometer
// value lives in the low 16 bits of the status word; upper bits carry
// flags.
func GetFanSpeed(c Client, target FanTarget) (uint32, error) {
	raw, err := c.DSTS(target.SpeedDeviceID())
	if err != nil {
		return 0, err
	}
	return raw & 0xFFFF, nil
}

// GetAllFanSpeeds reads every known fan header. Headers that fail to
// respond (absent on the board) are skipped, so the result never
// includes a target whose read failed and has at most three entries.
func GetAllFanSpeeds(c Client) []FanInfo {
	fans := make([]FanInfo, 0, len(AllFanTargets))
	for _, target := range AllFanTargets {
		rpm, err := GetFanSpeed(c, target)
		if err != nil {
			continue
		}
		fans = append(fans, FanInfo{Target: target, RPM: rpm})
	}
	return fans
}

// GetThermalProfile reads the active throttle policy.
func GetThermalProfile(c Client) (ThermalProfile, error) {
	raw, err := c.DSTS(devThrottleThermalPolicy)
	if err != nil {
		return "", err
	}
	return ThermalProfileFromRaw(raw)
}

// SetThermalProfile activates a throttle policy.
func SetThermalProfile(c Client, profile ThermalProfile) error {
	_, err := c.DEVS(devThrottleThermalPolicy, profile.Raw())
	return err
}
