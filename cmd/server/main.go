package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/gatehouse-dev/gatehouse/internal/server"

	_ "github.com/gatehouse-dev/gatehouse/docs" // Load swagger docs
)

// Version is set via ldflags at build time
var Version = "dev"

// @title Gatehouse API
// @version 1.0
// @description Multi-Tenant Identity and Access Management API
// @host localhost:8470
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	port := flag.Int("port", 0, "Port to run the server on (overrides config)")
	flag.Parse()

	if err := server.RunWithSignalHandling(server.Config{
		Port:    *port,
		Version: Version,
	}); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
