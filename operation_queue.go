package stockpile

import (
	"fmt"

	"go.uber.org/zap"
)

type operation struct {
	typ      operationType
	amount   int
	comps    []Component
	entities []Entity
	apply    func() error
}

type operationType int

const (
	opCreate operationType = iota
	opDestroy
	opAddComponent
	opRemoveComponent
	opNoop
)

// opKey identifies the latest pending change of one component on one entity.
type opKey struct {
	entity Entity
	row    uint32
}

type opQueue struct {
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingDestroy map[Entity]struct{}
	pendingMods    map[opKey]int
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[Entity]struct{}),
		pendingMods:    make(map[opKey]int),
	}
}

func (q *opQueue) enqueueOp(op operation) {
	switch op.typ {
	case opCreate:
		q.createOps = append(q.createOps, op)
	case opDestroy:
		q.destroyOps = append(q.destroyOps, op)
	case opAddComponent, opRemoveComponent:
		q.componentOps = append(q.componentOps, op)
	}
}

func (q *opQueue) len() int {
	return len(q.createOps) + len(q.componentOps) + len(q.destroyOps)
}

// processOperationQueue applies queued work: creates, then component changes,
// then destroys.
func (sto *storage) processOperationQueue() error {
	q := &sto.opQueue
	if q.len() == 0 {
		return nil
	}
	sto.logger.Debug("flushing operation queue",
		zap.Int("creates", len(q.createOps)),
		zap.Int("component_ops", len(q.componentOps)),
		zap.Int("destroys", len(q.destroyOps)),
	)
	defer q.reset()

	for _, op := range q.createOps {
		if _, err := sto.NewEntities(op.amount, op.comps...); err != nil {
			return fmt.Errorf("failed to process queued entity creation: %w", err)
		}
	}

	for _, op := range q.componentOps {
		if op.typ == opNoop {
			continue
		}
		// The entity may have been destroyed directly since the op was queued.
		if !sto.entities.IsValid(op.entities[0]) {
			continue
		}
		if err := op.apply(); err != nil {
			return fmt.Errorf("failed to process queued component change: %w", err)
		}
	}

	for _, op := range q.destroyOps {
		if err := sto.DestroyEntities(op.entities...); err != nil {
			return fmt.Errorf("failed to process queued destroy: %w", err)
		}
	}
	return nil
}

func (q *opQueue) reset() {
	q.createOps = q.createOps[:0]
	q.componentOps = q.componentOps[:0]
	q.destroyOps = q.destroyOps[:0]
	clear(q.pendingDestroy)
	clear(q.pendingMods)
}

func (q *opQueue) EnqueueDestroy(entities []Entity) {
	var newEntities []Entity
	for _, en := range entities {
		if _, exists := q.pendingDestroy[en]; exists {
			continue
		}
		newEntities = append(newEntities, en)
		q.pendingDestroy[en] = struct{}{}

		// Component changes for a doomed entity are pointless.
		for key, idx := range q.pendingMods {
			if key.entity == en {
				q.componentOps[idx].typ = opNoop
				delete(q.pendingMods, key)
			}
		}
	}

	if len(newEntities) > 0 {
		q.destroyOps = append(q.destroyOps, operation{
			typ:      opDestroy,
			entities: newEntities,
		})
	}
}

// EnqueueComponentOp queues a component change. A later change of the same
// component on the same entity replaces the earlier one.
func (q *opQueue) EnqueueComponentOp(typ operationType, en Entity, row uint32, comp Component, apply func() error) {
	if _, doomed := q.pendingDestroy[en]; doomed {
		return
	}
	key := opKey{entity: en, row: row}

	if existingIdx, exists := q.pendingMods[key]; exists {
		existing := &q.componentOps[existingIdx]
		existing.typ = typ
		existing.apply = apply
		return
	}

	q.pendingMods[key] = len(q.componentOps)
	q.componentOps = append(q.componentOps, operation{
		typ:      typ,
		entities: []Entity{en},
		comps:    []Component{comp},
		apply:    apply,
	})
}
