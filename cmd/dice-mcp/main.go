// Package main is the dice-mcp command: a frame loop that sums the dice in
// view and an MCP server exposing the recognizer as tools.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	// Global flags.
	flagLogLevel = "log-level"
	flagLogJSON  = "log-json"

	// Recognition flags.
	flagConfig    = "config"
	flagWatch     = "watch"
	flagMode      = "mode"
	flagThreshold = "threshold"
	flagAspectMin = "aspect-min"
	flagAspectMax = "aspect-max"

	// Frame loop flags.
	flagFrames    = "frames"
	flagCamera    = "camera"
	flagOut       = "out"
	flagMaxFrames = "max-frames"
)

func recognitionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "YAML file with threshold, aspect_ratio_min and aspect_ratio_max",
		},
		&cli.BoolFlag{
			Name:  flagWatch,
			Usage: "reload the config file when it changes",
		},
		&cli.StringFlag{
			Name:  flagMode,
			Value: "shared",
			Usage: "stabilizer mode: shared (one voting window) or tracked (one per die)",
		},
		&cli.IntFlag{
			Name:  flagThreshold,
			Usage: "binarization threshold, 0 = automatic",
		},
		&cli.Float64Flag{
			Name:  flagAspectMin,
			Usage: "smallest accepted region width/height ratio",
		},
		&cli.Float64Flag{
			Name:  flagAspectMax,
			Usage: "largest accepted region width/height ratio",
		},
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "dice-tools-mcp %s\n", Version)
		fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
	}

	return &cli.App{
		Name:    "dice-mcp",
		Usage:   "count the pips on dice in camera frames",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "debug, info, warn or error (default from DICE_MCP_LOG_LEVEL, else info)",
			},
			&cli.BoolFlag{
				Name:  flagLogJSON,
				Usage: "write logs as JSON",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve MCP tools over stdin/stdout",
				Flags:  recognitionFlags(),
				Action: serveAction,
			},
			{
				Name:      "run",
				Usage:     "recognize frames from a directory or camera and report the total",
				UsageText: "dice-mcp run --frames DIR | --camera ID [options]",
				Flags: append(recognitionFlags(),
					&cli.StringFlag{
						Name:  flagFrames,
						Usage: "directory of frame images, processed in lexical order",
					},
					&cli.IntFlag{
						Name:  flagCamera,
						Value: -1,
						Usage: "camera device ID (requires a build with -tags gocv)",
					},
					&cli.StringFlag{
						Name:  flagOut,
						Usage: "directory for annotated frames",
					},
					&cli.IntFlag{
						Name:  flagMaxFrames,
						Usage: "stop after this many frames (0 = no limit)",
					},
				),
				Action: runAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
