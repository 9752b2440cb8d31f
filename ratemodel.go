package wmediumd

//
// Rate to signal-strength model
//

// RateSignalTable is the fixed, monotonic mapping from rate index to
// received signal strength in dBm. Higher rate indexes model higher SNR at
// the receiver; the table exists purely to populate the signal field of
// RX_FRAME and TX_STATUS events and never feeds back into the loss
// decision.
var RateSignalTable = [NumRates]int32{
	-80, -77, -74, -71, -69, -66, -64, -62, -59, -56, -53, -50,
}

// RateModel maps a rate index to a signal strength. The zero value is ready
// to use.
type RateModel struct{}

// SignalFor returns the dBm value for rateIdx, or 0 when rateIdx is out of
// the [0, NumRates) range.
func (RateModel) SignalFor(rateIdx int32) int32 {
	if rateIdx < 0 || int(rateIdx) >= len(RateSignalTable) {
		return 0
	}
	return RateSignalTable[rateIdx]
}
