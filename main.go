package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lokuciejewski/nox-asm/config"
	"github.com/lokuciejewski/nox-asm/inspector"
	"github.com/lokuciejewski/nox-asm/loader"
	"github.com/lokuciejewski/nox-asm/parser"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		inputPath       string
		outputPath      string
		verboseMode     bool
		listingPath     string
		inspectMode     bool
		configPath      string
		allowUnresolved bool
	)

	rootCmd := &cobra.Command{
		Use:           "nox-asm",
		Short:         "Assembler for the Nox 8/16-bit CPU",
		Long:          "nox-asm assembles Nox assembly source into a 64 KiB memory image\nthat the Nox virtual machine loads directly at address 0.",
		Version:       fmt.Sprintf("%s (commit %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags override config values
			if cmd.Flags().Changed("allow-unresolved") {
				cfg.Assembler.AllowUnresolved = allowUnresolved
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Assembler.Trace = verboseMode
			}
			if listingPath != "" {
				cfg.Listing.Enabled = true
				cfg.Listing.File = listingPath
			}

			return assemble(inputPath, outputPath, cfg, inspectMode)
		},
	}

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input assembly source file")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output image file (65536 bytes)")
	rootCmd.Flags().BoolVarP(&verboseMode, "verbose", "v", false, "Print a per-line assembly trace")
	rootCmd.Flags().StringVar(&listingPath, "listing", "", "Write a listing file alongside the image")
	rootCmd.Flags().BoolVar(&inspectMode, "inspect", false, "Open the TUI inspector after assembly")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: platform config dir)")
	rootCmd.Flags().BoolVar(&allowUnresolved, "allow-unresolved", false, "Emit zeros for unresolved label references")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func assemble(inputPath, outputPath string, cfg *config.Config, inspect bool) error {
	program, perr := parser.ParseFile(inputPath)
	if perr != nil {
		return perr
	}

	asm := loader.New(program)
	asm.AllowUnresolved = cfg.Assembler.AllowUnresolved
	if cfg.Assembler.Trace {
		asm.TraceWriter = os.Stdout
	}

	image, perr := asm.Assemble()
	if perr != nil {
		return perr
	}

	if err := os.WriteFile(outputPath, image, 0644); err != nil { // #nosec G306 -- output image is not sensitive
		return fmt.Errorf("cannot write output file: %w", err)
	}

	if cfg.Assembler.Trace {
		fmt.Printf("Assembled %d lines, %d labels -> %s\n",
			len(program.Lines), asm.Symbols().Len(), outputPath)
	}

	if cfg.Listing.Enabled {
		f, err := os.Create(cfg.Listing.File) // #nosec G304 -- user listing file path
		if err != nil {
			return fmt.Errorf("cannot create listing file: %w", err)
		}
		defer f.Close()
		if err := asm.WriteListing(f, cfg.Listing.BytesPerLine); err != nil {
			return fmt.Errorf("cannot write listing: %w", err)
		}
	}

	if inspect {
		ins := inspector.New(asm, cfg.Inspector.BytesPerLine, cfg.Inspector.ContextLines)
		if err := ins.Run(); err != nil {
			return fmt.Errorf("inspector failed: %w", err)
		}
	}

	return nil
}
