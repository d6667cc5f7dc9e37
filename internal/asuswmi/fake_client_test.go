package asuswmi

import "errors"

// fakeClient emulates one bound backend with a fixed register file of
// DSTS values. Device IDs absent from the map fail the way a missing
// fan header does on real firmware.
type fakeClient struct {
	backend  Backend
	status   map[uint32]uint32
	policies []DesktopFanPolicy

	devsCalls []devsCall
	closed    bool
}

type devsCall struct {
	deviceID uint32
	control  uint32
}

var errNoSuchDevice = errors.New("no such device")

func (f *fakeClient) Backend() Backend { return f.backend }

func (f *fakeClient) DSTS(deviceID uint32) (uint32, error) {
	if f.backend == BackendAsusHW {
		return 0, ErrUnsupportedBackend
	}
	raw, ok := f.status[deviceID]
	if !ok {
		return 0, errNoSuchDevice
	}
	return raw, nil
}

func (f *fakeClient) DEVS(deviceID, control uint32) (uint32, error) {
	if f.backend == BackendAsusHW {
		return 0, ErrUnsupportedBackend
	}
	f.devsCalls = append(f.devsCalls, devsCall{deviceID: deviceID, control: control})
	if f.backend == BackendDesktop {
		return desktopCtrlSuccess, nil
	}
	return control, nil
}

// desktopCtrlSuccess mirrors the sentinel the desktop backend reports
// for a control write.
const desktopCtrlSuccess uint32 = 1

func (f *fakeClient) DesktopFanPolicies() ([]DesktopFanPolicy, error) {
	if f.backend != BackendDesktop {
		return nil, ErrUnsupportedBackend
	}
	return f.policies, nil
}

func (f *fakeClient) SetDesktopFanPolicy(policy DesktopFanPolicy) error {
	if f.backend != BackendDesktop {
		return ErrUnsupportedBackend
	}
	for i := range f.policies {
		if f.policies[i].FanType == policy.FanType {
			f.policies[i] = policy
			return nil
		}
	}
	f.policies = append(f.policies, policy)
	return nil
}

func (f *fakeClient) AsusHWSensors() ([]AsusHWSensor, error) {
	if f.backend != BackendAsusHW {
		return nil, ErrUnsupportedBackend
	}
	return []AsusHWSensor{
		{Index: 0, Source: 1, Type: 2, Name: "CPU Temperature", Value: 54.5},
	}, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}
