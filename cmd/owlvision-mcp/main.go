package main

import (
	"fmt"
	"log"
	"os"

	"github.com/owlvision/owlvision-mcp/internal/conf"
	"github.com/owlvision/owlvision-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""

	// Handle flags
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("owlvision-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("owlvision-mcp - MCP server for open-vocabulary object detection")
			fmt.Println()
			fmt.Println("Usage: owlvision-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --config <path>  Load settings from a YAML file")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  OWLVISION_BACKEND_URL        Inference backend base URL")
			fmt.Println("  OWLVISION_BACKEND_MODEL      Detection model name")
			fmt.Println("  OWLVISION_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a path argument")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	settings, err := conf.Load(configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if os.Getenv("OWLVISION_LOG_LEVEL") == "debug" {
		log.Printf("OwlVision MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Backend %s, model %s", settings.Backend.URL, settings.Backend.Model)
	}

	srv := server.New(settings)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
