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

// izsieve is the command-line front end of the iZ prime library:
//
//	izsieve sieve --algo iZm -n 1000000 [--out primes.bin[.zst]]
//	izsieve rand --bits 1024 --matrix -1 --rounds 25 --workers 4
//	izsieve vx6 --y 1000000 --rounds 25 [--out output/iZm/y.vx6]
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/Zprime137/iZ-library/iz"
	"github.com/Zprime137/iZ-library/randprime"
	"github.com/Zprime137/iZ-library/sieve"
	"github.com/Zprime137/iZ-library/store"
	"github.com/Zprime137/iZ-library/vx6"
)

func main() {
	log.SetPrefix("izsieve")
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "sieve":
		err = runSieve(os.Args[2:])
	case "rand":
		err = runRand(os.Args[2:])
	case "vx6":
		err = runVX6(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: izsieve <sieve|rand|vx6> [flags]")
	os.Exit(2)
}

func runSieve(args []string) error {
	fs := pflag.NewFlagSet("sieve", pflag.ExitOnError)
	algo := fs.String("algo", "iZm", "sieve algorithm (eratosthenes, wheel, euler, atkin, segmented, iZ, iZm)")
	n := fs.Uint64P("bound", "n", 1_000_000, "sieve bound")
	out := fs.String("out", "", "write the prime list artifact to this path (.zst/.s2 compresses)")
	verbose := fs.BoolP("verbose", "v", false, "debug logging")
	fs.Parse(args)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	run := sieve.ByName(*algo)
	if run == nil {
		return fmt.Errorf("unknown sieve %q", *algo)
	}
	primes := run(*n)
	log.Info("sieve done", "algo", *algo, "n", *n,
		"count", len(primes), "digest", fmt.Sprintf("%#x", sieve.Digest(primes)))
	if len(primes) > 0 {
		log.Info("last prime", "p", primes[len(primes)-1])
	}
	if *out != "" {
		if err := store.EnsureOutputDirs(); err != nil {
			return err
		}
		if err := store.WritePrimeListFile(*out, primes); err != nil {
			return err
		}
		log.Info("artifact written", "path", *out)
	}
	return nil
}

func runRand(args []string) error {
	fs := pflag.NewFlagSet("rand", pflag.ExitOnError)
	bits := fs.Int("bits", 1024, "bit size of the generated prime")
	matrix := fs.Int("matrix", iz.MatrixNeg, "target matrix: -1 for 6x-1, +1 for 6x+1")
	rounds := fs.Int("rounds", 25, "Miller-Rabin rounds")
	workers := fs.Int("workers", 0, "concurrent workers (0 = number of CPUs)")
	verbose := fs.BoolP("verbose", "v", false, "debug logging")
	fs.Parse(args)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	p, err := randprime.Random(context.Background(), randprime.Config{
		Matrix:  *matrix,
		Bits:    *bits,
		Rounds:  *rounds,
		Workers: *workers,
	})
	if err != nil {
		return err
	}
	log.Info("prime found", "bits", p.BitLen(), "mod6", new(big.Int).Mod(p, big.NewInt(6)))
	fmt.Println(p.String())
	return nil
}

func runVX6(args []string) error {
	fs := pflag.NewFlagSet("vx6", pflag.ExitOnError)
	ystr := fs.String("y", "1", "lattice row (arbitrary-precision decimal)")
	rounds := fs.Int("rounds", 25, "Miller-Rabin rounds for survivors past vx²")
	out := fs.String("out", "", "output path (default output/iZm/vx6_y<y>.bin)")
	fs.Parse(args)

	y, ok := new(big.Int).SetString(*ystr, 10)
	if !ok {
		return fmt.Errorf("invalid y %q", *ystr)
	}
	obj, err := vx6.Sieve(y, *rounds)
	if err != nil {
		return err
	}
	log.Info("vx6 segment sieved", "y", y, "primes", len(obj.Gaps),
		"hash", fmt.Sprintf("%x", obj.Hash[:8]))
	if err := obj.WriteFile(*out); err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = obj.FileName()
	}
	log.Info("artifact written", "path", path)
	return nil
}
