//go:build windows

package asuswmi

import (
	"fmt"
	"strings"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	wmiNamespace = `root\WMI`

	// Desktop fan headers are probed 0..maxFanHeaders-1; a nonzero
	// ErrorCode marks a header as absent.
	maxFanHeaders = 8

	// device_ctrl returns no usable status, so DEVS reports this
	// sentinel on the desktop backend.
	desktopCtrlOK uint32 = 1

	// Sensor values tagged with micro-unit scaling.
	microUnitDivisor = 1_000_000
)

// Connection is one live COM services handle with exactly one backend
// bound. It must be created and used on a single OS thread; the
// Dispatcher enforces that.
type Connection struct {
	backend    Backend
	objectPath string

	locator *ole.IUnknown
	wbem    *ole.IDispatch
	service *ole.IDispatch
}

// Connect initializes COM on the calling thread, opens the WMI services
// handle and probes the three ASUS classes in fixed order: desktop
// management, laptop ATK, sensor-only. The first hit wins and is never
// re-evaluated.
func Connect() (Client, error) {
	if err := ole.CoInitialize(0); err != nil {
		return nil, fmt.Errorf("initialize COM: %w", err)
	}

	locator, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("create WMI locator: %w", err)
	}

	wbem, err := locator.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		locator.Release()
		ole.CoUninitialize()
		return nil, fmt.Errorf("query WMI locator interface: %w", err)
	}

	serviceRaw, err := oleutil.CallMethod(wbem, "ConnectServer", ".", wmiNamespace)
	if err != nil {
		wbem.Release()
		locator.Release()
		ole.CoUninitialize()
		return nil, fmt.Errorf("connect to %s: %w", wmiNamespace, err)
	}

	c := &Connection{
		locator: locator,
		wbem:    wbem,
		service: serviceRaw.ToIDispatch(),
	}

	if err := c.selectBackend(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// selectBackend binds exactly one backend for the connection's lifetime.
func (c *Connection) selectBackend() error {
	backend, objectPath, err := probeBackend(c)
	if err != nil {
		return err
	}
	c.backend = backend
	c.objectPath = objectPath
	return nil
}

// objectExists reports whether an object path resolves in the service.
func (c *Connection) objectExists(objectPath string) bool {
	raw, err := oleutil.CallMethod(c.service, "Get", objectPath)
	if err != nil {
		return false
	}
	raw.ToIDispatch().Release()
	return true
}

// firstInstancePath enumerates a class and returns the relative path of
// its first instance.
func (c *Connection) firstInstancePath(class string) (string, bool) {
	collRaw, err := oleutil.CallMethod(c.service, "InstancesOf", class)
	if err != nil {
		return "", false
	}
	coll := collRaw.ToIDispatch()
	defer coll.Release()

	countVar, err := oleutil.GetProperty(coll, "Count")
	if err != nil || countVar.Val < 1 {
		return "", false
	}

	itemRaw, err := oleutil.CallMethod(coll, "ItemIndex", 0)
	if err != nil {
		return "", false
	}
	item := itemRaw.ToIDispatch()
	defer item.Release()

	pathRaw, err := oleutil.GetProperty(item, "Path_")
	if err != nil {
		return "", false
	}
	pathObj := pathRaw.ToIDispatch()
	defer pathObj.Release()

	relRaw, err := oleutil.GetProperty(pathObj, "RelPath")
	if err != nil {
		return "", false
	}
	return relRaw.ToString(), true
}

// Backend reports the bound management interface.
func (c *Connection) Backend() Backend {
	return c.backend
}

// methodParam is one named input parameter for a WMI method call.
type methodParam struct {
	name  string
	value interface{}
}

// execMethod spawns the method's input parameter object, fills it and
// invokes the method on the bound object path, returning the output
// parameter object.
func (c *Connection) execMethod(method string, params ...methodParam) (*ole.IDispatch, error) {
	class := c.objectPath
	if i := strings.IndexByte(class, '.'); i >= 0 {
		class = class[:i]
	}

	classRaw, err := oleutil.CallMethod(c.service, "Get", class)
	if err != nil {
		return nil, fmt.Errorf("get class %s: %w", class, err)
	}
	classObj := classRaw.ToIDispatch()
	defer classObj.Release()

	methodsRaw, err := oleutil.GetProperty(classObj, "Methods_")
	if err != nil {
		return nil, fmt.Errorf("methods of %s: %w", class, err)
	}
	methods := methodsRaw.ToIDispatch()
	defer methods.Release()

	methodRaw, err := oleutil.CallMethod(methods, "Item", method)
	if err != nil {
		return nil, fmt.Errorf("method %s.%s: %w", class, method, err)
	}
	methodObj := methodRaw.ToIDispatch()
	defer methodObj.Release()

	var inParams *ole.IDispatch
	inDefRaw, err := oleutil.GetProperty(methodObj, "InParameters")
	if err == nil && inDefRaw.VT == ole.VT_DISPATCH {
		inDef := inDefRaw.ToIDispatch()
		defer inDef.Release()

		instRaw, err := oleutil.CallMethod(inDef, "SpawnInstance_")
		if err != nil {
			return nil, fmt.Errorf("spawn parameters for %s: %w", method, err)
		}
		inParams = instRaw.ToIDispatch()
		defer inParams.Release()

		for _, p := range params {
			if _, err := oleutil.PutProperty(inParams, p.name, p.value); err != nil {
				return nil, fmt.Errorf("set parameter %s of %s: %w", p.name, method, err)
			}
		}
	}

	var outRaw *ole.VARIANT
	if inParams != nil {
		outRaw, err = oleutil.CallMethod(c.service, "ExecMethod", c.objectPath, method, inParams)
	} else {
		outRaw, err = oleutil.CallMethod(c.service, "ExecMethod", c.objectPath, method)
	}
	if err != nil {
		return nil, fmt.Errorf("exec %s on %s: %w", method, c.objectPath, err)
	}
	out := outRaw.ToIDispatch()
	if out == nil {
		return nil, fmt.Errorf("exec %s returned no output object", method)
	}
	return out, nil
}

// uint32Prop extracts a numeric output property, coercing whatever
// integer width the provider chose to a canonical 32-bit value.
func uint32Prop(obj *ole.IDispatch, name string) (uint32, error) {
	raw, err := oleutil.GetProperty(obj, name)
	if err != nil {
		return 0, fmt.Errorf("property %s: %w", name, err)
	}
	defer raw.Clear()

	switch raw.VT {
	case ole.VT_I1, ole.VT_UI1, ole.VT_I2, ole.VT_UI2, ole.VT_I4, ole.VT_UI4, ole.VT_INT, ole.VT_UINT, ole.VT_I8, ole.VT_UI8:
		return uint32(raw.Val), nil
	}
	return 0, fmt.Errorf("property %s has non-numeric variant type 0x%X", name, raw.VT)
}

func stringProp(obj *ole.IDispatch, name string) (string, error) {
	raw, err := oleutil.GetProperty(obj, name)
	if err != nil {
		return "", fmt.Errorf("property %s: %w", name, err)
	}
	defer raw.Clear()
	return raw.ToString(), nil
}

// DSTS reads a device status value through the bound backend.
func (c *Connection) DSTS(deviceID uint32) (uint32, error) {
	switch c.backend {
	case BackendLaptop:
		out, err := c.execMethod("DSTS", methodParam{"Device_ID", int32(deviceID)})
		if err != nil {
			return 0, err
		}
		defer out.Release()
		return uint32Prop(out, "Device_Status")

	case BackendDesktop:
		out, err := c.execMethod("device_status", methodParam{"device_id", int32(deviceID)})
		if err != nil {
			return 0, err
		}
		defer out.Release()
		return uint32Prop(out, "ctrl_param")
	}
	return 0, ErrUnsupportedBackend
}

// DEVS writes a device control value through the bound backend.
func (c *Connection) DEVS(deviceID, control uint32) (uint32, error) {
	switch c.backend {
	case BackendLaptop:
		out, err := c.execMethod("DEVS",
			methodParam{"Device_ID", int32(deviceID)},
			methodParam{"Control_Status", int32(control)})
		if err != nil {
			return 0, err
		}
		defer out.Release()
		return uint32Prop(out, "Device_Status")

	case BackendDesktop:
		out, err := c.execMethod("device_ctrl",
			methodParam{"device_id", int32(deviceID)},
			methodParam{"ctrl_param", int32(control)})
		if err != nil {
			return 0, err
		}
		out.Release()
		return desktopCtrlOK, nil
	}
	return 0, ErrUnsupportedBackend
}

// DesktopFanPolicies probes every possible fan header. A header whose
// GetFanPolicy answers with a nonzero ErrorCode is absent and omitted.
func (c *Connection) DesktopFanPolicies() ([]DesktopFanPolicy, error) {
	if c.backend != BackendDesktop {
		return nil, ErrUnsupportedBackend
	}

	policies := make([]DesktopFanPolicy, 0, maxFanHeaders)
	for fanType := uint32(0); fanType < maxFanHeaders; fanType++ {
		out, err := c.execMethod("GetFanPolicy", methodParam{"FanType", int32(fanType)})
		if err != nil {
			continue
		}

		errorCode, err := uint32Prop(out, "ErrorCode")
		if err != nil {
			out.Release()
			continue
		}
		mode, _ := stringProp(out, "Mode")
		profile, _ := stringProp(out, "Profile")
		source, _ := stringProp(out, "Source")
		lowLimit, _ := uint32Prop(out, "LowLimit")
		out.Release()

		if policy, ok := fanPolicyFromReply(fanType, errorCode, mode, profile, source, lowLimit); ok {
			policies = append(policies, policy)
		}
	}
	return policies, nil
}

// SetDesktopFanPolicy writes one fan header's policy.
func (c *Connection) SetDesktopFanPolicy(policy DesktopFanPolicy) error {
	if c.backend != BackendDesktop {
		return ErrUnsupportedBackend
	}

	out, err := c.execMethod("SetFanPolicy",
		methodParam{"FanType", int32(policy.FanType)},
		methodParam{"Mode", string(policy.Mode)},
		methodParam{"Profile", string(policy.Profile)},
		methodParam{"Source", policy.Source},
		methodParam{"LowLimit", int32(policy.LowLimit)})
	if err != nil {
		return err
	}
	defer out.Release()

	errorCode, err := uint32Prop(out, "ErrorCode")
	if err != nil {
		return err
	}
	if errorCode != 0 {
		return fmt.Errorf("SetFanPolicy for header %d failed with error code %d", policy.FanType, errorCode)
	}
	return nil
}

// AsusHWSensors enumerates the sensor-only backend: count, per-index
// descriptors, one buffer refresh per source group, then per-index
// values. Micro-unit tagged values are scaled down to base units.
func (c *Connection) AsusHWSensors() ([]AsusHWSensor, error) {
	if c.backend != BackendAsusHW {
		return nil, ErrUnsupportedBackend
	}

	out, err := c.execMethod("sensor_get_number")
	if err != nil {
		return nil, err
	}
	count, err := uint32Prop(out, "result")
	out.Release()
	if err != nil {
		return nil, err
	}

	type sensorInfo struct {
		source uint32
		typ    uint32
		scaled uint32
		name   string
	}

	infos := make([]sensorInfo, 0, count)
	sources := make(map[uint32]struct{})
	for i := uint32(0); i < count; i++ {
		out, err := c.execMethod("sensor_get_info", methodParam{"index", int32(i)})
		if err != nil {
			return nil, err
		}
		source, _ := uint32Prop(out, "source")
		typ, _ := uint32Prop(out, "type")
		scaled, _ := uint32Prop(out, "scaled")
		name, _ := stringProp(out, "name")
		out.Release()

		infos = append(infos, sensorInfo{source: source, typ: typ, scaled: scaled, name: name})
		sources[source] = struct{}{}
	}

	for source := range sources {
		out, err := c.execMethod("sensor_update_buffer", methodParam{"source", int32(source)})
		if err != nil {
			return nil, err
		}
		out.Release()
	}

	sensors := make([]AsusHWSensor, 0, count)
	for i, info := range infos {
		out, err := c.execMethod("sensor_get_value", methodParam{"index", int32(i)})
		if err != nil {
			return nil, err
		}
		raw, err := uint32Prop(out, "result")
		out.Release()
		if err != nil {
			return nil, err
		}

		value := float64(raw)
		if info.scaled != 0 {
			value /= microUnitDivisor
		}

		sensors = append(sensors, AsusHWSensor{
			Index:  uint32(i),
			Source: info.source,
			Type:   info.typ,
			Name:   info.name,
			Value:  value,
		})
	}
	return sensors, nil
}

// Close releases the COM handles and uninitializes COM on the calling
// thread.
func (c *Connection) Close() error {
	if c.service != nil {
		c.service.Release()
		c.service = nil
	}
	if c.wbem != nil {
		c.wbem.Release()
		c.wbem = nil
	}
	if c.locator != nil {
		c.locator.Release()
		c.locator = nil
	}
	ole.CoUninitialize()
	return nil
}

var (
	_ Client      = (*Connection)(nil)
	_ classProber = (*Connection)(nil)
)
