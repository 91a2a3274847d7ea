package workload

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/huynhanx03/go-blockingqueue/pkg/utils"
)

const defaultLedgerShards = 64

// Ledger is a concurrent set of consumed item ids. Ids are spread over
// shards by their xxhash so consumers rarely contend on the same lock.
type Ledger struct {
	shards []*ledgerShard
	mask   uint64

	unique     atomic.Int64
	duplicates atomic.Int64
}

type ledgerShard struct {
	sync.Mutex
	seen map[int64]struct{}

	// Keeps neighbouring shards off the same cache line.
	pad [64]byte
}

// NewLedger creates a Ledger. shards is rounded up to a power of two;
// zero or negative uses a default.
func NewLedger(shards int) *Ledger {
	if shards <= 0 {
		shards = defaultLedgerShards
	}
	n := utils.CeilToPowerOfTwo(shards)
	l := &Ledger{
		shards: make([]*ledgerShard, n),
		mask:   uint64(n - 1),
	}
	for i := range l.shards {
		l.shards[i] = &ledgerShard{seen: make(map[int64]struct{})}
	}
	return l
}

func (l *Ledger) shard(id int64) *ledgerShard {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(id))
	return l.shards[xxhash.Sum64(b[:])&l.mask]
}

// Record marks id as consumed. It returns false if id was already recorded.
func (l *Ledger) Record(id int64) bool {
	s := l.shard(id)

	s.Lock()
	_, dup := s.seen[id]
	if !dup {
		s.seen[id] = struct{}{}
	}
	s.Unlock()

	if dup {
		l.duplicates.Add(1)
		return false
	}
	l.unique.Add(1)
	return true
}

// Seen reports whether id has been recorded.
func (l *Ledger) Seen(id int64) bool {
	s := l.shard(id)

	s.Lock()
	_, ok := s.seen[id]
	s.Unlock()
	return ok
}

// Len returns the number of distinct ids recorded.
func (l *Ledger) Len() int { return int(l.unique.Load()) }

// Duplicates returns how many Record calls hit an id already present.
func (l *Ledger) Duplicates() int { return int(l.duplicates.Load()) }
