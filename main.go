package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/openfanhub/asusmon/api"
	"github.com/openfanhub/asusmon/internal/asuswmi"
	"github.com/openfanhub/asusmon/internal/platform"
	"github.com/openfanhub/asusmon/internal/sio"
)

func main() {
	// Parse command line flags
	port := flag.String("port", "8080", "Port to run the server on")
	bind := flag.String("bind", "0.0.0.0", "IP address to bind the server to")
	driverDir := flag.String("driver-dir", "", "Directory containing the port I/O driver (defaults to the executable's directory)")
	flag.Parse()

	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		log.Fatalf("Platform validation failed: %v", err)
	}
	if !platform.HardwareSupported() {
		log.Printf("Hardware access is not supported on %s; all subsystems will report unavailable", platform.GetOS())
	}

	// Both hardware subsystems initialize non-fatally: a machine without
	// a supported chip or ASUS firmware still serves the API.
	sioMonitor, sioErr := sio.Init(*driverDir)
	if sioErr != nil {
		log.Printf("Super I/O unavailable: %v", sioErr)
	} else {
		log.Printf("Super I/O chip detected: %s", sioMonitor.Status().ChipName)
	}

	dispatcher, wmiErr := asuswmi.Spawn()
	if wmiErr != nil {
		log.Printf("ASUS WMI unavailable: %v", wmiErr)
	} else {
		log.Printf("ASUS WMI backend: %s", dispatcher.Backend())
	}

	server, err := api.NewServer(api.Config{
		Sio:        sioMonitor,
		SioInitErr: sioErr,
		Dispatcher: dispatcher,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
		if sioMonitor != nil {
			if err := sioMonitor.Close(); err != nil {
				log.Printf("Error closing Super I/O channel: %v", err)
			}
		}
		if dispatcher != nil {
			dispatcher.Close()
		}
		os.Exit(0)
	}()

	// Start the server
	log.Printf("Starting asusmon server on %s:%s", *bind, *port)
	log.Fatal(server.Start(*bind + ":" + *port))
}
