package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/openfanhub/asusmon/internal/asuswmi"
	"github.com/openfanhub/asusmon/internal/sio"
	"github.com/openfanhub/asusmon/internal/sysinfo"
)

// wmiError maps a dispatcher result to an HTTP status: missing hardware
// support is a reported state, everything else a server error.
func wmiError(c *fiber.Ctx, err error) error {
	if errors.Is(err, asuswmi.ErrUnsupportedBackend) || errors.Is(err, asuswmi.ErrDispatcherClosed) {
		return c.Status(503).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) wmiUnavailable(c *fiber.Ctx) error {
	return c.Status(503).JSON(fiber.Map{"error": "no ASUS WMI management interface available"})
}

// WMI backend endpoint
func (s *Server) getWmiBackend(c *fiber.Ctx) error {
	backend := "unavailable"
	if s.dispatcher != nil {
		backend = s.dispatcher.Backend().String()
	}
	return c.JSON(fiber.Map{"backend": backend})
}

// Fan speed endpoints
func (s *Server) getWmiFans(c *fiber.Ctx) error {
	if s.dispatcher == nil {
		return s.wmiUnavailable(c)
	}

	var fans []asuswmi.FanInfo
	err := s.dispatcher.Execute(func(client asuswmi.Client) error {
		fans = asuswmi.GetAllFanSpeeds(client)
		return nil
	})
	if err != nil {
		return wmiError(c, err)
	}

	return c.JSON(fans)
}

func (s *Server) getWmiFan(c *fiber.Ctx) error {
	if s.dispatcher == nil {
		return s.wmiUnavailable(c)
	}

	target, err := asuswmi.ParseFanTarget(c.Params("target"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var rpm uint32
	err = s.dispatcher.Execute(func(client asuswmi.Client) error {
		var err error
		rpm, err = asuswmi.GetFanSpeed(client, target)
		return err
	})
	if err != nil {
		return wmiError(c, err)
	}

	return c.JSON(asuswmi.FanInfo{Target: target, RPM: rpm})
}

// Thermal profile endpoints
func (s *Server) getThermalProfile(c *fiber.Ctx) error {
	if s.dispatcher == nil {
		return s.wmiUnavailable(c)
	}

	var profile asuswmi.ThermalProfile
	err := s.dispatcher.Execute(func(client asuswmi.Client) error {
		var err error
		profile, err = asuswmi.GetThermalProfile(client)
		return err
	})
	if err != nil {
		return wmiError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (s *Server) setThermalProfile(c *fiber.Ctx) error {
	if s.dispatcher == nil {
		return s.wmiUnavailable(c)
	}

	var req struct {
		Profile string `json:"profile"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	profile, err := asuswmi.ParseThermalProfile(req.Profile)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	err = s.dispatcher.Execute(func(client asuswmi.Client) error {
		return asuswmi.SetThermalProfile(client, profile)
	})
	if err != nil {
		return wmiError(c, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// Desktop fan policy endpoints
func (s *Server) getFanPolicies(c *fiber.Ctx) error {
	if s.dispatcher == nil {
		return s.wmiUnavailable(c)
	}

	var policies []asuswmi.DesktopFanPolicy
	err := s.dispatcher.Execute(func(client asuswmi.Client) error {
		var err error
		policies, err = client.DesktopFanPolicies()
		return err
	})
	if err != nil {
		return wmiError(c, err)
	}

	return c.JSON(policies)
}

func (s *Server) setFanPolicy(c *fiber.Ctx) error {
	if s.dispatcher == nil {
		return s.wmiUnavailable(c)
	}

	var policy asuswmi.DesktopFanPolicy
	if err := c.BodyParser(&policy); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Coerce free-form strings to the closed enumerations before the
	// values reach firmware.
	policy.Mode = asuswmi.FanModeFromString(string(policy.Mode))
	policy.Profile = asuswmi.FanProfileFromString(string(policy.Profile))

	err := s.dispatcher.Execute(func(client asuswmi.Client) error {
		return client.SetDesktopFanPolicy(policy)
	})
	if err != nil {
		return wmiError(c, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// Sensor-only backend endpoint
func (s *Server) getWmiSensors(c *fiber.Ctx) error {
	if s.dispatcher == nil {
		return s.wmiUnavailable(c)
	}

	var sensors []asuswmi.AsusHWSensor
	err := s.dispatcher.Execute(func(client asuswmi.Client) error {
		var err error
		sensors, err = client.AsusHWSensors()
		return err
	})
	if err != nil {
		return wmiError(c, err)
	}

	return c.JSON(sensors)
}

// Fan curve endpoint
func (s *Server) getFanCurve(c *fiber.Ctx) error {
	target, err := asuswmi.ParseFanTarget(c.Params("target"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(asuswmi.DefaultFanCurve(target))
}

// Super I/O endpoints
func (s *Server) getSioSnapshot(c *fiber.Ctx) error {
	if s.sioMonitor == nil {
		return c.Status(503).JSON(fiber.Map{"error": "no supported Super I/O chip available"})
	}

	snapshot, err := s.sioMonitor.ReadAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(snapshot)
}

func (s *Server) getSioStatus(c *fiber.Ctx) error {
	if s.sioMonitor == nil {
		detail := "no supported Super I/O chip available"
		if s.sioInitErr != nil {
			detail = s.sioInitErr.Error()
		}
		return c.JSON(sio.UnavailableStatus(detail))
	}
	return c.JSON(s.sioMonitor.Status())
}

// LibreHardwareMonitor endpoints
func (s *Server) getLhmSnapshot(c *fiber.Ctx) error {
	snapshot, err := s.lhmReader.Snapshot()
	if err != nil {
		return c.Status(503).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snapshot)
}

func (s *Server) getLhmStatus(c *fiber.Ctx) error {
	return c.JSON(s.lhmReader.Status())
}

// Host summary endpoint
func (s *Server) getSystem(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := sysinfo.Collect(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(info)
}
