package kite

import (
	"strings"
	"sync"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// instrumentMapper maps trading symbols to instrument tokens for one
// exchange. It is filled once from the instruments dump.
type instrumentMapper struct {
	symbolToToken map[string]int
	loaded        bool
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{symbolToToken: make(map[string]int)}
}

// load replaces all mappings with the given instruments
func (im *instrumentMapper) load(instruments []kiteconnect.Instrument) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken = make(map[string]int, len(instruments))
	for _, inst := range instruments {
		im.symbolToToken[strings.ToUpper(inst.Tradingsymbol)] = int(inst.InstrumentToken)
	}
	im.loaded = true
}

func (im *instrumentMapper) isLoaded() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.loaded
}

// getToken retrieves the token for a symbol
func (im *instrumentMapper) getToken(symbol string) (int, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[strings.ToUpper(symbol)]
	return token, exists
}
