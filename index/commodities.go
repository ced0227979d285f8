package index

// Commodity declarations are optional in the ledger format, so a
// commodity that only ever appears in price or balance directives is
// worth a hint but not an error. The index keeps a per-document count
// of commodities used by posting amounts (including costs and prices
// on postings) to tell the two situations apart.

type commodityUses struct {
	byName map[string]map[string]int // name -> uri -> count
}

func newCommodityUses() *commodityUses {
	return &commodityUses{byName: make(map[string]map[string]int)}
}

func (u *commodityUses) add(name, uri string) {
	uris, ok := u.byName[name]
	if !ok {
		uris = make(map[string]int)
		u.byName[name] = uris
	}
	uris[uri]++
}

func (u *commodityUses) removeDocument(uri string) {
	for name, uris := range u.byName {
		delete(uris, uri)
		if len(uris) == 0 {
			delete(u.byName, name)
		}
	}
}

// CommodityUsedInPostings reports whether any posting in any known
// document uses the commodity in an amount, cost, or price.
func (ix *Index) CommodityUsedInPostings(name string) bool {
	uris, ok := ix.postingCurrencies.byName[name]
	return ok && len(uris) > 0
}
