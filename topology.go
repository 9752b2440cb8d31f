package wmediumd

//
// Radio topology: N radios, their addresses, and the R x N x N loss tensor
//

import (
	"errors"
	"fmt"
)

// ErrTopologyInvalid indicates a malformed topology definition: a bad
// radio count, a duplicate address, a wrong matrix shape, or an
// out-of-range probability. It is always fatal at startup.
var ErrTopologyInvalid = errors.New("wmediumd: invalid topology")

// TopologyConfig is the parsed, already-validated-for-shape input to
// [NewTopology]. Reading it off disk is not this package's concern (see the
// sibling config package); this struct is the seam between the two.
type TopologyConfig struct {
	// Addresses is the dense, index-ordered list of the N radio addresses.
	Addresses []Address

	// Rates is R, the number of supported rate indexes.
	Rates int

	// Loss is the flattened R x N x N loss tensor: Loss[r] has exactly
	// N*N entries, row-major ([i*N+j] is the loss from i to j).
	Loss [][]float64
}

// Topology is the immutable table of radios, their addresses, and the
// per-(rate, src, dst) loss probability. Once built with [NewTopology] a
// Topology never changes, so concurrent read access from multiple
// goroutines is always safe without additional locking.
type Topology struct {
	// n is the radio count.
	n int

	// rates is R.
	rates int

	// addresses is indexed by radio index.
	addresses []Address

	// index is the address -> index lookup table.
	index map[Address]int

	// loss is the R x N x N loss tensor, stored as loss[r][i*n+j].
	loss [][]float64
}

// NewTopology validates cfg and builds an immutable [Topology], or returns
// an [ErrTopologyInvalid]-wrapped error describing the first problem found.
func NewTopology(cfg TopologyConfig) (*Topology, error) {
	n := len(cfg.Addresses)
	if n < 1 {
		return nil, fmt.Errorf("%w: radio count must be >= 1, got %d", ErrTopologyInvalid, n)
	}
	if cfg.Rates < 1 {
		return nil, fmt.Errorf("%w: rate count must be >= 1, got %d", ErrTopologyInvalid, cfg.Rates)
	}
	if len(cfg.Loss) != cfg.Rates {
		return nil, fmt.Errorf(
			"%w: expected %d loss matrices, got %d", ErrTopologyInvalid, cfg.Rates, len(cfg.Loss),
		)
	}

	index := make(map[Address]int, n)
	for i, addr := range cfg.Addresses {
		if _, already := index[addr]; already {
			return nil, fmt.Errorf("%w: duplicate address %s", ErrTopologyInvalid, addr)
		}
		index[addr] = i
	}

	loss := make([][]float64, cfg.Rates)
	for r, matrix := range cfg.Loss {
		if len(matrix) != n*n {
			return nil, fmt.Errorf(
				"%w: rate %d: expected %d matrix entries, got %d",
				ErrTopologyInvalid, r, n*n, len(matrix),
			)
		}
		row := make([]float64, n*n)
		// Populate matrix[r][i][j] = flat[i*n+j] directly, a row-major
		// flattening. This intentionally does not reproduce the (x, y)
		// bookkeeping bug in the original C loader, whose increment
		// condition left y advancing once every n iterations instead of
		// every iteration: a straight row-major copy is what that loop
		// was clearly trying to do.
		for i, p := range matrix {
			if p < 0.0 || p > 1.0 {
				return nil, fmt.Errorf(
					"%w: rate %d: loss probability %v out of [0,1]", ErrTopologyInvalid, r, p,
				)
			}
			row[i] = p
		}
		loss[r] = row
	}

	addresses := make([]Address, n)
	copy(addresses, cfg.Addresses)

	return &Topology{
		n:         n,
		rates:     cfg.Rates,
		addresses: addresses,
		index:     index,
		loss:      loss,
	}, nil
}

// N returns the radio count.
func (t *Topology) N() int {
	return t.n
}

// Rates returns R, the number of supported rate indexes.
func (t *Topology) Rates() int {
	return t.rates
}

// Lookup returns the index of addr and true, or (0, false) if addr is not
// part of this topology.
func (t *Topology) Lookup(addr Address) (int, bool) {
	idx, ok := t.index[addr]
	return idx, ok
}

// AddressOf returns the address of radio index idx. Panics if idx is out of
// range: callers only ever iterate idx in [0, N()).
func (t *Topology) AddressOf(idx int) Address {
	return t.addresses[idx]
}

// Loss returns the probability that a frame sent by radio i at rate r is
// lost before reaching radio j. Panics if r, i, or j are out of range.
func (t *Topology) Loss(r, i, j int) float64 {
	return t.loss[r][i*t.n+j]
}
