package asuswmi

// Fixed identifiers of the ASUS WMI surface. The laptop instance path
// is the conventional ATK0110 ACPI device; boards exposing the
// interface under a different instance name are not handled.
const (
	desktopClass     = "ASUSManagement"
	laptopObjectPath = `ASUSATKWMI_WMNB.InstanceName='ACPI\\ATK0110\\0_0'`
	asusHWClass      = "ASUSHW"
)

// classProber is the minimal enumeration surface backend selection
// needs from a WMI services handle.
type classProber interface {
	// firstInstancePath enumerates a class and returns the relative
	// path of its first instance.
	firstInstancePath(class string) (string, bool)

	// objectExists reports whether an object path resolves.
	objectExists(objectPath string) bool
}

// probeBackend selects exactly one backend: the desktop management
// class first, then the laptop ATK object, then the sensor-only class.
// The first hit wins, so repeated probes of the same machine always
// bind the same backend.
func probeBackend(p classProber) (Backend, string, error) {
	if path, ok := p.firstInstancePath(desktopClass); ok {
		return BackendDesktop, path, nil
	}
	if p.objectExists(laptopObjectPath) {
		return BackendLaptop, laptopObjectPath, nil
	}
	if path, ok := p.firstInstancePath(asusHWClass); ok {
		return BackendAsusHW, path, nil
	}
	return 0, "", ErrNoBackend
}
