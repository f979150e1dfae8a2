package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"chesscore/internal/engine"
	"chesscore/internal/nnue"
	"chesscore/internal/uci"
)

const defaultNetName = "chesscore.nnue"

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	evalFile   = flag.String("evalfile", "", "path to NNUE weights file")
	hashMB     = flag.Int("hash", 64, "transposition table size in MB")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	weights := loadWeights()
	eval := nnue.NewEvaluator(weights)

	eng := engine.NewEngine(*hashMB, eval)

	protocol := uci.New(eng)
	protocol.Run()
}

// loadWeights resolves NNUE weights from the -evalfile flag or a small set
// of standard locations, falling back to randomly initialized weights so the
// engine still runs (with meaningless evaluation) rather than refusing to
// start.
func loadWeights() *nnue.Weights {
	if *evalFile != "" {
		w, err := nnue.Load(*evalFile)
		if err != nil {
			log.Printf("Warning: failed to load %s: %v", *evalFile, err)
		} else {
			log.Printf("NNUE weights loaded from %s", *evalFile)
			return w
		}
	}

	for _, dir := range searchPaths() {
		path := filepath.Join(dir, defaultNetName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		w, err := nnue.Load(path)
		if err != nil {
			log.Printf("Warning: failed to load %s: %v", path, err)
			continue
		}
		log.Printf("NNUE weights loaded from %s", path)
		return w
	}

	log.Printf("Warning: no NNUE weights found, using random weights")
	return nnue.NewRandomWeights(1)
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return []string{
		filepath.Join(home, ".chesscore", "nnue"),
		"./nnue",
		".",
	}
}
