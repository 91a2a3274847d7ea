package unique

import (
	"errors"
	"sync"

	"github.com/huynhanx03/go-blockingqueue/pkg/settings"
	t "github.com/huynhanx03/go-blockingqueue/pkg/timer"
)

var (
	ErrWorkerIDRange = errors.New("unique: worker id exceeds the node bits")
	ErrBitLayout     = errors.New("unique: total bits must exceed node + step bits")
)

// Generator hands out unique int64 identifiers.
type Generator interface {
	Generate() int64
}

var _ Generator = (*SnowflakeNode)(nil)

// SnowflakeNode generates time ordered ids laid out as
// | timestamp | node | step |, safe for concurrent use.
type SnowflakeNode struct {
	mu        sync.Mutex
	timestamp int64
	node      int64
	step      int64

	epoch   int64
	seconds bool // tight layouts count seconds instead of milliseconds

	stepMax   int64
	timeShift uint8
	nodeShift uint8
	limitMask int64

	clock t.Timer
}

func NewSnowflakeNode(config settings.SnowflakeNode, clock t.Timer) (*SnowflakeNode, error) {
	layout := config.Config
	nodeMax := int64(-1 ^ (-1 << layout.Node))

	if config.WorkerID < 0 || config.WorkerID > nodeMax {
		return nil, ErrWorkerIDRange
	}

	totalBits := layout.TotalBits
	if totalBits == 0 {
		totalBits = 63
	}
	if totalBits <= layout.Node+layout.Step {
		return nil, ErrBitLayout
	}

	limitMask := int64(1)<<totalBits - 1
	if totalBits >= 63 {
		limitMask = int64(^uint64(0) >> 1)
	}

	return &SnowflakeNode{
		node:      config.WorkerID,
		epoch:     layout.Epoch,
		seconds:   totalBits < 50, // < 50 bits of millis overflows too soon
		stepMax:   int64(-1 ^ (-1 << layout.Step)),
		timeShift: layout.Node + layout.Step,
		nodeShift: layout.Step,
		limitMask: limitMask,
		clock:     clock,
	}, nil
}

func (n *SnowflakeNode) now() int64 {
	if n.seconds {
		return n.clock.Now().Unix()
	}
	return n.clock.Now().UnixMilli()
}

// Generate creates a unique ID
func (n *SnowflakeNode) Generate() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if now < n.timestamp {
		now = n.timestamp
	}

	if now == n.timestamp {
		n.step = (n.step + 1) & n.stepMax
		if n.step == 0 {
			// Sequence exhausted for this tick; wait for the clock.
			for now <= n.timestamp {
				now = n.now()
			}
		}
	} else {
		n.step = 0
	}

	n.timestamp = now

	id := ((now - n.epoch) << n.timeShift) | (n.node << n.nodeShift) | n.step
	return id & n.limitMask
}

// Node extracts the worker id encoded in id.
func (n *SnowflakeNode) Node(id int64) int64 {
	nodeMax := int64(-1 ^ (-1 << (n.timeShift - n.nodeShift)))
	return (id >> n.nodeShift) & nodeMax
}
