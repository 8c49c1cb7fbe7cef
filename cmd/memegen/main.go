package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dimonomid/memegen/clhistory"
	"github.com/dimonomid/memegen/clipboard"
	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/meme"
	"github.com/dimonomid/memegen/version"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

func main() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting home dir: %s\n", err)
		os.Exit(1)
	}

	var (
		flagTop      = pflag.String("top", meme.DefaultTopText, "Top caption")
		flagBottom   = pflag.String("bottom", meme.DefaultBottomText, "Bottom caption")
		flagTemplate = pflag.StringP("template", "t", "", "Template: an imgflip id, a name, a glob over names like 'drake*', or an image URL or path")
		flagFontSize = pflag.Float64("font-size", meme.DefaultFontSize, "Font size multiplier, from 1 to 3")
		flagColor    = pflag.String("color", meme.DefaultTextColor, "Caption color, like '#ffffff' or 'yellow'")

		flagOut    = pflag.StringP("out", "o", "", "Render the meme to the given PNG file without the UI; '-' means stdout")
		flagList   = pflag.Bool("list", false, "Print the templates without the UI")
		flagSearch = pflag.String("search", "", "With --list, only print the templates matching the query")

		flagConfig   = pflag.String("config", DefaultConfigPath(homeDir), "Config file; it's fine if it doesn't exist")
		flagLogLevel = pflag.String("loglevel", "error", "memegen's own log level. Valid values are: error, warning, info, verbose1, verbose2 or verbose3")
		flagOffline  = pflag.Bool("offline", false, "Don't fetch the templates, use the cached ones regardless of their age")
		flagVersion  = pflag.Bool("version", false, "Print the version and exit")
	)

	pflag.Parse()

	if *flagVersion {
		fmt.Println(version.VersionFullDescr())
		return
	}

	logLevel, err := log.ParseLevel(*flagLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --loglevel: %s\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*flagConfig, homeDir, pflag.CommandLine.Changed("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := log.SetOutputFile(expandHomeDir(cfg.LogFile, homeDir)); err != nil {
		fmt.Printf("NOTE: log file is not available: %s\n", err)
	}

	initialDoc := meme.Default().
		WithTopText(*flagTop).
		WithBottomText(*flagBottom).
		WithFontSize(*flagFontSize)

	if _, err := meme.ParseColor(*flagColor); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --color: %s\n", err)
		os.Exit(1)
	}
	initialDoc = initialDoc.WithTextColor(*flagColor).Normalized()

	if *flagOut != "" || *flagList {
		if err := mainHeadless(cfg, homeDir, headlessParams{
			doc:          initialDoc,
			templateSpec: *flagTemplate,
			out:          *flagOut,
			list:         *flagList,
			query:        *flagSearch,
			stdout:       os.Stdout,
		}, *flagOffline, logLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		return
	}

	cmdLineHistory, err := clhistory.New(clhistory.CLHistoryParams{
		Filename: defaultCmdHistoryPath(homeDir),
	})
	if err != nil {
		if cmdLineHistory == nil {
			fmt.Fprintf(os.Stderr, "Error initializing command line history: %s\n", err)
			os.Exit(1)
		}

		fmt.Printf("NOTE: command line history is not loaded: %s\n", err)
	}

	var clipboardInitErr error
	if err := clipboard.Init(); err != nil {
		clipboardInitErr = err
		fmt.Printf("NOTE: Clipboard is not available: %s\n", clipboardInitErr.Error())
	}

	app, err := newMemegenApp(
		memegenAppParams{
			cfg:     cfg,
			homeDir: homeDir,

			initialDoc:      initialDoc,
			initialTemplate: *flagTemplate,
			offline:         *flagOffline,

			clipboard:        clipboard.System{},
			clipboardInitErr: clipboardInitErr,

			logLevel: logLevel,
		},
		cmdLineHistory,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Starting UI ...")
	if err := app.runTViewApp(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	// We end up here when the user quits the UI

	fmt.Println("")
	fmt.Println("Stopping background work...")

	app.Close()
	app.Wait()

	fmt.Println("Have a nice day.")
}

// loadConfig reads the config file on top of the defaults. A missing file is
// only an error if it was given explicitly.
func loadConfig(path, homeDir string, explicit bool) (*Config, error) {
	defaults := DefaultConfig(homeDir)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return &defaults, nil
		}

		return nil, errors.Annotatef(err, "reading config")
	}

	cfg, err := LoadConfigFromFile(path, defaults)
	if err != nil {
		return nil, errors.Trace(err)
	}

	return cfg, nil
}

func mainHeadless(
	cfg *Config, homeDir string, params headlessParams, offline bool, logLevel log.LogLevel,
) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	svc, err := newServices(servicesParams{
		cfg:       cfg,
		homeDir:   homeDir,
		offline:   offline,
		clipboard: clipboard.System{},
		logger:    log.NewLogger(logLevel),
	})
	if err != nil {
		return errors.Trace(err)
	}

	params.svc = svc

	return errors.Trace(runHeadless(ctx, params))
}
