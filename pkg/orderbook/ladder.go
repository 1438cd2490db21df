package orderbook

import "github.com/google/btree"

const ladderDegree = 16

// ladder is one side of the book. The tree is ordered best price first on
// both sides, so Min is always the best level and Ascend walks best-first.
type ladder struct {
	side   Side
	tree   *btree.BTreeG[*priceLevel]
	levels map[Price]*priceLevel
}

func newLadder(side Side) *ladder {
	less := func(a, b *priceLevel) bool { return a.price < b.price } // asks: lowest first
	if side == BUY {
		less = func(a, b *priceLevel) bool { return a.price > b.price } // bids: highest first
	}

	return &ladder{
		side:   side,
		tree:   btree.NewG(ladderDegree, less),
		levels: make(map[Price]*priceLevel),
	}
}

func (ld *ladder) best() (*priceLevel, bool) {
	return ld.tree.Min()
}

// push appends o at the tail of its price level, creating the level if needed.
func (ld *ladder) push(o *Order) *restingOrder {
	level, ok := ld.levels[o.Price()]
	if !ok {
		level = newPriceLevel(o.Price())
		ld.levels[o.Price()] = level
		ld.tree.ReplaceOrInsert(level)
	}
	return level.push(o)
}

// remove detaches the slot and drops its level once nothing rests there.
func (ld *ladder) remove(slot *restingOrder) {
	level := slot.level
	level.remove(slot)
	if level.empty() {
		ld.tree.Delete(level)
		delete(ld.levels, level.price)
	}
}

func (ld *ladder) walk(fn func(*priceLevel) bool) {
	ld.tree.Ascend(fn)
}

func (ld *ladder) levelInfos() []LevelInfo {
	infos := make([]LevelInfo, 0, ld.tree.Len())
	ld.walk(func(level *priceLevel) bool {
		infos = append(infos, LevelInfo{Price: level.price, Quantity: level.totalQuantity()})
		return true
	})
	return infos
}
