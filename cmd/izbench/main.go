// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// izbench times the sieves against each other and cross-checks their
// output digests. A YAML run file selects sieves, bounds and
// repetitions:
//
//	sieves: [eratosthenes, segmented, iZ, iZm]
//	bounds: [1000000, 100000000]
//	repeat: 3
//	verify: true
//	artifacts: false
//
// The report is written to output/bench-<run-id>.yaml.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
	"sigs.k8s.io/yaml"

	"github.com/Zprime137/iZ-library/sieve"
	"github.com/Zprime137/iZ-library/store"
)

// RunFile is the YAML schema of a benchmark run.
type RunFile struct {
	Sieves    []string `json:"sieves"`
	Bounds    []uint64 `json:"bounds"`
	Repeat    int      `json:"repeat"`
	Verify    bool     `json:"verify"`
	Artifacts bool     `json:"artifacts"`
}

// Result is one (sieve, bound) measurement in the report.
type Result struct {
	Sieve  string  `json:"sieve"`
	Bound  uint64  `json:"bound"`
	Count  int     `json:"count"`
	Digest string  `json:"digest"`
	BestMS float64 `json:"best_ms"`
}

// Report is the serialized output of a run.
type Report struct {
	RunID     string   `json:"run_id"`
	Started   string   `json:"started"`
	Results   []Result `json:"results"`
	PeakRSSKB int64    `json:"peak_rss_kb"`
	Verified  bool     `json:"verified,omitempty"`
}

func main() {
	log.SetPrefix("izbench")
	fs := pflag.NewFlagSet("izbench", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "bench.yaml", "run file")
	verbose := fs.BoolP("verbose", "v", false, "debug logging")
	fs.Parse(os.Args[1:])
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := run(*cfgPath); err != nil {
		log.Fatal(err)
	}
}

func run(cfgPath string) error {
	buf, err := os.ReadFile(cfgPath)
	if err != nil {
		return err
	}
	var cfg RunFile
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", cfgPath, err)
	}
	if len(cfg.Sieves) == 0 {
		for _, s := range sieve.All {
			cfg.Sieves = append(cfg.Sieves, s.Name)
		}
	}
	if len(cfg.Bounds) == 0 {
		cfg.Bounds = []uint64{1_000_000}
	}
	if cfg.Repeat <= 0 {
		cfg.Repeat = 1
	}

	var named []sieve.Named
	for _, name := range cfg.Sieves {
		run := sieve.ByName(name)
		if run == nil {
			return fmt.Errorf("unknown sieve %q in %s", name, cfgPath)
		}
		named = append(named, sieve.Named{Name: name, Run: run})
	}

	report := Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC().Format(time.RFC3339),
	}
	if err := store.EnsureOutputDirs(); err != nil {
		return err
	}

	for _, bound := range cfg.Bounds {
		for _, s := range named {
			best := time.Duration(0)
			var primes []uint64
			for i := 0; i < cfg.Repeat; i++ {
				start := time.Now()
				primes = s.Run(bound)
				if d := time.Since(start); best == 0 || d < best {
					best = d
				}
			}
			res := Result{
				Sieve:  s.Name,
				Bound:  bound,
				Count:  len(primes),
				Digest: fmt.Sprintf("%#x", sieve.Digest(primes)),
				BestMS: float64(best.Microseconds()) / 1e3,
			}
			report.Results = append(report.Results, res)
			log.Info("measured", "sieve", s.Name, "n", bound,
				"count", res.Count, "best", best)
			if cfg.Artifacts {
				path := store.ArtifactPath(fmt.Sprintf("%s-%d-%s.primes.zst",
					s.Name, bound, report.RunID))
				if err := store.WritePrimeListFile(path, primes); err != nil {
					return err
				}
				log.Debug("artifact written", "path", path)
			}
		}
		if cfg.Verify {
			if err := sieve.CheckIntegrity(named, bound); err != nil {
				return err
			}
			log.Info("integrity verified", "n", bound, "sieves", len(named))
		}
	}
	report.Verified = cfg.Verify

	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err == nil {
		report.PeakRSSKB = int64(ru.Maxrss)
	}

	out, err := yaml.Marshal(&report)
	if err != nil {
		return err
	}
	path := store.ArtifactPath("bench-" + report.RunID + ".yaml")
	if err := os.WriteFile(path, out, 0600); err != nil {
		return err
	}
	log.Info("report written", "path", path, "peak_rss_kb", report.PeakRSSKB)
	return nil
}
