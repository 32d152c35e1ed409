/*
Command vehicletrack detects and tracks vehicles in highway video using a
perspective sliding window search and an accumulating heat map.

	vehicletrack track -m model.json -i project_video.mp4 -o out.mp4
	vehicletrack windows -i frame.jpg -o windows.jpg
	vehicletrack report --db sessions.db -o session.png
	vehicletrack config heatmap.threshold=4 > tuned.ini
*/
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// Flags.
	flagConfig   = "config"
	flagDebug    = "debug"
	flagModel    = "model"
	flagInput    = "input"
	flagOutput   = "output"
	flagCodec    = "codec"
	flagDB       = "db"
	flagSession  = "session"
	flagCaptions = "captions"
	flagFont     = "font"
	flagLimit    = "limit"
)

func main() {

	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:            "vehicletrack",
		Usage:           "detect and track vehicles in video",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load tuning parameters from INI `FILE`, defaults to the built in configuration",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = newLogger(c.Bool(flagDebug))
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				// stdout does not support sync on all platforms
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "track",
				Usage: "annotate a video with tracked vehicle bounding boxes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagModel,
						Aliases:  []string{"m"},
						Usage:    "trained classifier model JSON `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:     flagInput,
						Aliases:  []string{"i"},
						Usage:    "input video `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:     flagOutput,
						Aliases:  []string{"o"},
						Usage:    "output video `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagCodec,
						Value: "mp4v",
						Usage: "FourCC codec of the output video",
					},
					&cli.StringFlag{
						Name:  flagDB,
						Usage: "record the session to SQLite database `FILE`",
					},
					&cli.BoolFlag{
						Name:  flagCaptions,
						Usage: "label drawn boxes",
					},
					&cli.StringFlag{
						Name:  flagFont,
						Usage: "TrueType font `FILE` for captions, defaults to Go Regular",
					},
					&cli.IntFlag{
						Name:  flagLimit,
						Usage: "stop after `N` frames, 0 processes the whole video",
					},
				},
				Action: func(c *cli.Context) error {
					return trackAction(c, logger)
				},
			},
			{
				Name:  "windows",
				Usage: "draw the search window grid on an image or the first video frame",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagInput,
						Aliases:  []string{"i"},
						Usage:    "input image or video `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:     flagOutput,
						Aliases:  []string{"o"},
						Usage:    "output image `FILE`",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return windowsAction(c, logger)
				},
			},
			{
				Name:  "report",
				Usage: "summarise and plot a recorded session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagDB,
						Usage:    "SQLite session database `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagSession,
						Usage: "session `ID`, defaults to the most recent session",
					},
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write the plot to PNG `FILE`",
					},
				},
				Action: func(c *cli.Context) error {
					return reportAction(c, logger)
				},
			},
			{
				Name:      "config",
				Usage:     "print the effective configuration",
				ArgsUsage: "[SECTION.KEY=VALUE ...]",
				Action:    configAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a console logger writing Info and above to stderr, or
// Debug and above when debug is set
func newLogger(debug bool) (*zap.SugaredLogger, error) {

	level := zap.InfoLevel

	if debug {
		level = zap.DebugLevel
	}

	logger, err := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}.Build()

	if err != nil {
		return nil, err
	}

	return logger.Sugar().Named("vehicletrack"), nil
}
