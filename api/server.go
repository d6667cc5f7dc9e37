package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/openfanhub/asusmon/internal/asuswmi"
	"github.com/openfanhub/asusmon/internal/lhm"
	"github.com/openfanhub/asusmon/internal/platform"
	"github.com/openfanhub/asusmon/internal/sio"
)

// Config carries the hardware subsystems the server exposes. Either may
// be nil when its hardware is absent; the endpoints then report the
// subsystem as unavailable instead of the process failing.
type Config struct {
	Sio        *sio.Monitor
	SioInitErr error
	Dispatcher *asuswmi.Dispatcher
}

// Server represents the API server
type Server struct {
	app        *fiber.App
	sioMonitor *sio.Monitor
	sioInitErr error
	dispatcher *asuswmi.Dispatcher
	lhmReader  lhm.Reader
}

// NewServer creates a new API server
func NewServer(cfg Config) (*Server, error) {
	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        120 * time.Second,
		DisableKeepalive:   false,
		EnableIPValidation: false,
		ServerHeader:       "asusmon",
		AppName:            "asusmon v1.0",
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "*",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length,Content-Type,Access-Control-Allow-Origin",
		MaxAge:           86400, // 24 hours
	}))

	server := &Server{
		app:        app,
		sioMonitor: cfg.Sio,
		sioInitErr: cfg.SioInitErr,
		dispatcher: cfg.Dispatcher,
		lhmReader:  lhm.NewReader(),
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// ASUS WMI endpoints
	api.Get("/wmi/backend", s.getWmiBackend)
	api.Get("/wmi/fans", s.getWmiFans)
	api.Get("/wmi/fans/:target", s.getWmiFan)
	api.Get("/wmi/profile", s.getThermalProfile)
	api.Post("/wmi/profile", s.setThermalProfile)
	api.Get("/wmi/policies", s.getFanPolicies)
	api.Post("/wmi/policies", s.setFanPolicy)
	api.Get("/wmi/sensors", s.getWmiSensors)
	api.Get("/wmi/fancurve/:target", s.getFanCurve)

	// Super I/O endpoints
	api.Get("/sio", s.getSioSnapshot)
	api.Get("/sio/status", s.getSioStatus)

	// LibreHardwareMonitor endpoints
	api.Get("/lhm", s.getLhmSnapshot)
	api.Get("/lhm/status", s.getLhmStatus)

	// Host summary
	api.Get("/system", s.getSystem)

	// Health check
	api.Get("/health", s.healthCheck)
}

// Start starts the API server
func (s *Server) Start(address string) error {
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	backend := "unavailable"
	if s.dispatcher != nil {
		backend = s.dispatcher.Backend().String()
	}
	return c.JSON(fiber.Map{
		"status":        "ok",
		"platform":      platform.GetOS(),
		"wmi_backend":   backend,
		"sio_available": s.sioMonitor != nil,
		"timestamp":     time.Now().Unix(),
	})
}
