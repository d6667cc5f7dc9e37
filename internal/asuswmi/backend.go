// Package asuswmi talks to the ASUS vendor management interface exposed
// through WMI. Three mutually exclusive backends exist in the wild: the
// desktop board management class, the laptop ATK ACPI-WMI class, and a
// sensor-only hardware class. Exactly one is selected per connection.
package asuswmi

import "errors"

var (
	// ErrNoBackend means none of the three ASUS WMI classes is present.
	ErrNoBackend = errors.New("no ASUS WMI management interface found")

	// ErrUnsupportedBackend is returned when an operation is not
	// meaningful on the selected backend (e.g. DSTS on the sensor-only
	// class).
	ErrUnsupportedBackend = errors.New("operation not supported by the selected WMI backend")
)

// Backend identifies which management interface the connection bound.
// The set is closed and fixed for the connection's lifetime.
type Backend int

const (
	BackendDesktop Backend = iota
	BackendLaptop
	BackendAsusHW
)

func (b Backend) String() string {
	switch b {
	case BackendDesktop:
		return "desktop"
	case BackendLaptop:
		return "laptop"
	case BackendAsusHW:
		return "asushw"
	}
	return "unavailable"
}

// ASUS WMI device IDs for DSTS/DEVS, from the Linux kernel asus-wmi
// driver (include/linux/platform_data/x86/asus-wmi.h).
const (
	devCPUFanSpeed uint32 = 0x00110013
	devGPUFanSpeed uint32 = 0x00110014
	devMidFanSpeed uint32 = 0x00110031

	devCPUFanCurve uint32 = 0x00110024
	devGPUFanCurve uint32 = 0x00110025
	devMidFanCurve uint32 = 0x00110032

	devThrottleThermalPolicy uint32 = 0x00120075
)

// FanTarget identifies a fan header. The mapping to device IDs is static
// and backend-independent.
type FanTarget string

const (
	TargetCPU FanTarget = "cpu"
	TargetGPU FanTarget = "gpu"
	TargetMid FanTarget = "mid"
)

// AllFanTargets lists every known fan header, in probe order.
var AllFanTargets = []FanTarget{TargetCPU, TargetGPU, TargetMid}

// ParseFanTarget validates a target name from the API layer.
func ParseFanTarget(s string) (FanTarget, error) {
	switch FanTarget(s) {
	case TargetCPU, TargetGPU, TargetMid:
		return FanTarget(s), nil
	}
	return "", errors.New("unknown fan target: " + s)
}

// SpeedDeviceID is the DSTS device ID reading this fan's tachometer.
func (t FanTarget) SpeedDeviceID() uint32 {
	switch t {
	case TargetGPU:
		return devGPUFanSpeed
	case TargetMid:
		return devMidFanSpeed
	default:
		return devCPUFanSpeed
	}
}

// CurveDeviceID is the device ID carrying this fan's curve data.
func (t FanTarget) CurveDeviceID() uint32 {
	switch t {
	case TargetGPU:
		return devGPUFanCurve
	case TargetMid:
		return devMidFanCurve
	default:
		return devCPUFanCurve
	}
}

// ThermalProfile is one of the three firmware throttle policies.
type ThermalProfile string

const (
	ProfileStandard    ThermalProfile = "standard"
	ProfilePerformance ThermalProfile = "performance"
	ProfileSilent      ThermalProfile = "silent"
)

// ParseThermalProfile validates a profile name from the API layer.
func ParseThermalProfile(s string) (ThermalProfile, error) {
	switch ThermalProfile(s) {
	case ProfileStandard, ProfilePerformance, ProfileSilent:
		return ThermalProfile(s), nil
	}
	return "", errors.New("unknown thermal profile: " + s)
}

// Raw returns the DEVS control value for the profile.
func (p ThermalProfile) Raw() uint32 {
	switch p {
	case ProfilePerformance:
		return 1
	case ProfileSilent:
		return 2
	default:
		return 0
	}
}

// ThermalProfileFromRaw decodes a DSTS status value. Only the low byte
// carries the profile; any unknown value is a decode error, never a new
// variant.
func ThermalProfileFromRaw(raw uint32) (ThermalProfile, error) {
	switch raw & 0xFF {
	case 0:
		return ProfileStandard, nil
	case 1:
		return ProfilePerformance, nil
	case 2:
		return ProfileSilent, nil
	}
	return "", errors.New("unknown thermal profile raw value")
}

// FanInfo is one fan header's current speed.
type FanInfo struct {
	Target FanTarget `json:"target"`
	RPM    uint32    `json:"rpm"`
}

// FanMode is the desktop fan control signal type. Closed enumeration;
// unrecognized firmware strings coerce to PWM.
type FanMode string

const (
	ModePWM FanMode = "PWM"
	ModeDC  FanMode = "DC"
)

// FanModeFromString coerces a firmware-reported mode string. Unknown
// values fall back to PWM rather than erroring, matching firmware that
// reports modes this code predates.
func FanModeFromString(s string) FanMode {
	if FanMode(s) == ModeDC {
		return ModeDC
	}
	return ModePWM
}

// FanProfile is the desktop per-header fan profile. Closed enumeration;
// unrecognized firmware strings coerce to STANDARD.
type FanProfile string

const (
	FanProfileStandard  FanProfile = "STANDARD"
	FanProfileSilent    FanProfile = "SILENT"
	FanProfileTurbo     FanProfile = "TURBO"
	FanProfileFullSpeed FanProfile = "FULL_SPEED"
	FanProfileManual    FanProfile = "MANUAL"
)

// FanProfileFromString coerces a firmware-reported profile string.
func FanProfileFromString(s string) FanProfile {
	switch FanProfile(s) {
	case FanProfileSilent, FanProfileTurbo, FanProfileFullSpeed, FanProfileManual:
		return FanProfile(s)
	}
	return FanProfileStandard
}

// DesktopFanPolicy is one desktop fan header's control policy. It
// round-trips through the management class's GetFanPolicy/SetFanPolicy.
// Source is the firmware's temperature source label, carried verbatim.
type DesktopFanPolicy struct {
	FanType  uint32     `json:"fan_type"`
	Mode     FanMode    `json:"mode"`
	Profile  FanProfile `json:"profile"`
	Source   string     `json:"source"`
	LowLimit uint32     `json:"low_limit"`
}

// fanPolicyFromReply builds a policy from one GetFanPolicy reply. A
// nonzero error code marks the header absent: no policy is reported.
func fanPolicyFromReply(fanType, errorCode uint32, mode, profile, source string, lowLimit uint32) (DesktopFanPolicy, bool) {
	if errorCode != 0 {
		return DesktopFanPolicy{}, false
	}
	return DesktopFanPolicy{
		FanType:  fanType,
		Mode:     FanModeFromString(mode),
		Profile:  FanProfileFromString(profile),
		Source:   source,
		LowLimit: lowLimit,
	}, true
}

// AsusHWSensor is one sensor reading from the sensor-only backend.
type AsusHWSensor struct {
	Index  uint32  `json:"index"`
	Source uint32  `json:"source"`
	Type   uint32  `json:"type"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
}
