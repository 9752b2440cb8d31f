// Command wmediumd is the wireless medium simulator daemon: it registers
// with the host's simulated-radio driver and runs the transmission pipeline
// until killed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"

	"github.com/wmediumd-go/wmediumd"
	"github.com/wmediumd-go/wmediumd/cmd/internal/optional"
	"github.com/wmediumd-go/wmediumd/config"
	"github.com/wmediumd-go/wmediumd/pcapdump"
)

// version is the daemon's reported version, bumped by hand on release.
const version = "0.1.0"

func main() {
	configFile := flag.String("c", "", "load this topology config file and run the daemon")
	sampleOut := flag.String("o", "", "write a sample topology config to this file and exit")
	sampleIfaces := flag.Int("ifaces", 2, "radio count for -o's sample config")
	pcapFile := flag.String("pcap", "", "optionally record every frame to this pcap file")
	showVersion := flag.Bool("V", false, "print the version and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	seedFlag := flag.Int64("seed", 0, "replay a fixed RNG seed instead of seeding from the OS CSPRNG (0 means unset)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	seed := optional.None[int64]()
	if *seedFlag != 0 {
		seed = optional.Some(*seedFlag)
	}

	if *sampleOut != "" {
		if err := config.WriteSample(*sampleOut, *sampleIfaces, wmediumd.NumRates); err != nil {
			log.WithError(err).Fatal("config.WriteSample")
		}
		return
	}

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "wmediumd: one of -c or -o is required")
		flag.Usage()
		os.Exit(2)
	}

	topology, err := config.Load(*configFile)
	if err != nil {
		log.WithError(err).Fatal("config.Load")
	}

	var link wmediumd.DriverLink
	link, err = wmediumd.NewGenlDriverLink(log.Log)
	if err != nil {
		log.WithError(err).Fatal("wmediumd.NewGenlDriverLink")
	}
	if *pcapFile != "" {
		link = pcapdump.New(*pcapFile, link, log.Log)
	}
	defer link.Close()

	random := wmediumd.RandomSource(wmediumd.NewSeededRandomSource())
	if !seed.Empty() {
		random = wmediumd.NewSeededRandomSourceFromSeed(seed.Unwrap())
	}

	metrics := &wmediumd.Metrics{}
	medium := wmediumd.NewMedium(topology, random, link, metrics, log.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Infof("wmediumd: starting, %d radios, %d rates", topology.N(), topology.Rates())
	if err := medium.Run(ctx); err != nil {
		log.WithError(err).Fatal("medium.Run")
	}

	snap := metrics.Snapshot()
	log.Infof(
		"wmediumd: shutting down: received=%d sent_copies=%d dropped=%d acked=%d",
		snap.Received, snap.SentCopies, snap.Dropped, snap.Acked,
	)
}
