// Command bfsdemo drives a small constraint system from the command line,
// exercising the eq/ge/percent façade end to end and printing the solved
// values.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/nettrino/bfs"
	"github.com/nettrino/bfs/internal/dump"
)

func main() {
	var (
		cpuProfile = flag.Bool("profile", false, "capture a CPU profile of the run to ./cpu.pprof")
		debug      = flag.Bool("debug", false, "dump the solved tableau before exiting")
		verbose    = flag.Bool("v", false, "enable debug-level solver logging")
	)
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatalf("bfsdemo: logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	sys := bfs.NewSystem(bfs.WithLogger(logger))

	left := sys.CreateObjectVariable("left")
	width := sys.CreateObjectVariable("width")
	container := sys.CreateObjectVariable("container")

	if err := sys.AddConstraintEQ(container, 1000); err != nil {
		log.Fatalf("bfsdemo: container constraint: %v", err)
	}
	if err := sys.AddConstraintGE(width, left, 0, true, bfs.Medium); err != nil {
		log.Fatalf("bfsdemo: width constraint: %v", err)
	}
	if err := sys.AddConstraintPercent(left, container, width, 25, true); err != nil {
		log.Fatalf("bfsdemo: percent constraint: %v", err)
	}

	if err := sys.Minimize(); err != nil {
		log.Fatalf("bfsdemo: minimize: %v", err)
	}

	fmt.Printf("left=%v width=%v container=%v\n",
		sys.ValueFor(left), sys.ValueFor(width), sys.ValueFor(container))

	if *debug {
		fmt.Fprintln(os.Stderr, dump.Tableau(sys.Snapshot()))
	}
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
