package lending

import (
	"boostlend/core"

	"github.com/ethereum/go-ethereum/common"
)

type recordKind uint8

const (
	kindReserve recordKind = iota
	kindVariableDebt
	kindStableDebt
	kindSupply
	kindStake
	kindPool
	kindLock
)

// recordKey identifies one record of the state, user is zero for per asset records
// and asset is zero for per user records.
type recordKey struct {
	kind  recordKind
	asset common.Address
	user  common.Address
}

type journalEntry struct {
	key  recordKey
	undo func()
}

// journal keeps the pre-image of every record touched by the running
// operation. Only the first touch of a record is recorded.
type journal struct {
	entries []journalEntry
	touched map[recordKey]struct{}
	events  []core.Event
}

func newJournal() *journal {
	return &journal{touched: make(map[recordKey]struct{})}
}

func (j *journal) touch(key recordKey) bool {
	if _, ok := j.touched[key]; ok {
		return false
	}
	j.touched[key] = struct{}{}
	return true
}

func (j *journal) append(key recordKey, undo func()) {
	j.entries = append(j.entries, journalEntry{key: key, undo: undo})
}

func (j *journal) revert() {
	for i := len(j.entries) - 1; i >= 0; i-- {
		j.entries[i].undo()
	}
	j.entries = nil
	j.events = nil
}

type cloner[V any] interface {
	Clone() V
}

// journalRecord saves m[k] before its first mutation in the current operation
func journalRecord[K comparable, V cloner[V]](j *journal, key recordKey, m map[K]V, k K) {
	if j == nil || !j.touch(key) {
		return
	}

	if prev, ok := m[k]; ok {
		prev = prev.Clone()
		j.append(key, func() { m[k] = prev })
		return
	}

	j.append(key, func() { delete(m, k) })
}
