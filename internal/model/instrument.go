package model

// Instrument is one of the tracked market indices.
type Instrument string

const (
	Nifty     Instrument = "NIFTY"
	BankNifty Instrument = "BANKNIFTY"
	Sensex    Instrument = "SENSEX"
)

// Dhan exchange segment and instrument type for index data.
const (
	ExchangeSegment = "IDX_I"
	InstrumentType  = "INDEX"
)

// securityIDs maps each index to its Dhan security id.
var securityIDs = map[Instrument]string{
	Nifty:     "13",
	BankNifty: "25",
	Sensex:    "51",
}

// Instruments returns all tracked indices in a fixed order.
func Instruments() []Instrument {
	return []Instrument{Nifty, BankNifty, Sensex}
}

// SecurityID returns the provider security id for this instrument,
// or "" if the instrument is unknown.
func (i Instrument) SecurityID() string {
	return securityIDs[i]
}

// Valid reports whether i is one of the tracked indices.
func (i Instrument) Valid() bool {
	_, ok := securityIDs[i]
	return ok
}
