// Command wmediumd-calibrate sanity-checks a topology config file: for each
// rate index it prints the delivered-fraction and ACK probability the
// configured loss matrix implies, without running the daemon at all.
//
// There is no traffic to generate here, unlike a throughput-calibration
// tool that drives real packets over a configured link: the loss values in
// the config file already are the probabilities of interest, so this tool
// just reads them back out.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/wmediumd-go/wmediumd/config"
)

func main() {
	configFile := flag.String("c", "", "topology config file to calibrate")
	onlyRate := flag.Int("rate", -1, "only report this rate index (-1 means all)")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "wmediumd-calibrate: -c FILE is required")
		flag.Usage()
		os.Exit(2)
	}

	topology, err := config.Load(*configFile)
	if err != nil {
		log.WithError(err).Fatal("config.Load")
	}

	n := topology.N()
	if n < 2 {
		fmt.Fprintln(os.Stderr, "wmediumd-calibrate: topology has fewer than two radios, nothing to calibrate")
		os.Exit(1)
	}

	fmt.Println("rate,src_iface,delivered_fraction,ack_probability")
	for r := 0; r < topology.Rates(); r++ {
		if *onlyRate >= 0 && r != *onlyRate {
			continue
		}
		var sumAll float64
		var countAll int
		for src := 0; src < n; src++ {
			deliveredFrac := perSourceDeliveredFraction(topology, r, src, n)
			// a single-attempt unicast frame is ACKed exactly when it is
			// delivered: the return channel carrying the ACK is assumed
			// perfect.
			fmt.Printf("%d,%d,%.6f,%.6f\n", r, src, deliveredFrac, deliveredFrac)
			sumAll += deliveredFrac
			countAll++
		}
		if countAll > 0 {
			fmt.Printf("%d,*,%.6f,%.6f\n", r, sumAll/float64(countAll), sumAll/float64(countAll))
		}
	}
}

// perSourceDeliveredFraction averages 1-Loss(r, src, dst) over every peer
// dst other than src, the fraction of the other n-1 radios that would
// receive a single-attempt frame transmitted by src at rate r.
func perSourceDeliveredFraction(topology topologyLossSource, r, src, n int) float64 {
	if n < 2 {
		return 0
	}
	var sum float64
	for dst := 0; dst < n; dst++ {
		if dst == src {
			continue
		}
		sum += 1 - topology.Loss(r, src, dst)
	}
	return sum / float64(n-1)
}

// topologyLossSource is the single method this tool needs from
// [wmediumd.Topology], named locally so perSourceDeliveredFraction stays
// testable against a fake.
type topologyLossSource interface {
	Loss(rateIdx, i, j int) float64
}
