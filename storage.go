package stockpile

import (
	"fmt"
	"iter"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"go.uber.org/zap"
)

var _ Storage = &storage{}

var emptyMask mask.Mask

// storage routes component operations to pools by schema row and keeps the
// groups over those pools in step. Each entity carries a signature mask with
// one bit per pool it is in; a group's signature is the bits of its pools, so
// an entity belongs to the group exactly when its signature contains the
// group's.
type storage struct {
	schema      table.Schema
	entities    *EntitySlotAllocator
	signatures  []mask.Mask // entity index -> pools holding it
	pools       map[uint32]storedPool
	groups      map[mask.Mask]*Group
	owners      map[uint32]*Group // pool row -> group reordering it
	locks       mask.Mask
	cursorLocks int
	opQueue     opQueue
	logger      *zap.Logger
}

func newStorage(schema table.Schema) Storage {
	return &storage{
		schema:     schema,
		entities:   NewEntitySlotAllocator(Config.initialCapacity),
		signatures: make([]mask.Mask, 0, Config.initialCapacity),
		pools:      make(map[uint32]storedPool),
		groups:     make(map[mask.Mask]*Group),
		owners:     make(map[uint32]*Group),
		opQueue:    newOpQueue(),
		logger:     Config.logger,
	}
}

// RowIndexFor returns the schema row of a registered component.
func (sto *storage) RowIndexFor(c Component) uint32 {
	return sto.schema.RowIndexFor(c)
}

func (sto *storage) Registered(c Component) bool {
	return sto.schema.Contains(c)
}

// register is the write-path counterpart of RowIndexFor.
func (sto *storage) register(c Component) uint32 {
	sto.schema.Register(c)
	return sto.schema.RowIndexFor(c)
}

func (sto *storage) poolFor(c Component) (storedPool, uint32) {
	row := sto.register(c)
	if pool, ok := sto.pools[row]; ok {
		return pool, row
	}
	pool := c.newStoredPool()
	sto.pools[row] = pool
	return pool, row
}

// lookup finds the pool of c without registering it.
func (sto *storage) lookup(c Component) (storedPool, uint32, bool) {
	if !sto.schema.Contains(c) {
		return nil, 0, false
	}
	row := sto.schema.RowIndexFor(c)
	pool, ok := sto.pools[row]
	return pool, row, ok
}

// Pool returns a read-only view of the pool of c. Membership changes go
// through the storage.
func (sto *storage) Pool(c Component) (PoolReader, bool) {
	pool, _, ok := sto.lookup(c)
	if !ok {
		return nil, false
	}
	return pool.view(), true
}

func (sto *storage) NewEntities(n int, components ...Component) ([]Entity, error) {
	if sto.Locked() {
		return nil, LockedStorageError{}
	}
	if n <= 0 {
		return nil, nil
	}
	type target struct {
		pool storedPool
		row  uint32
	}
	targets := make([]target, len(components))
	for i, c := range components {
		pool, row := sto.poolFor(c)
		targets[i] = target{pool, row}
	}

	entities := make([]Entity, n)
	for i := range entities {
		en := sto.summon()
		for _, t := range targets {
			_, err := sto.attach(en, t.row, t.pool, func() (bool, error) {
				return t.pool.emplaceZero(en), nil
			})
			if err != nil {
				return entities[:i], fmt.Errorf("failed to attach component: %w", err)
			}
		}
		entities[i] = en
	}
	return entities, nil
}

func (sto *storage) summon() Entity {
	en := sto.entities.Summon()
	for int(en.Index()) >= len(sto.signatures) {
		sto.signatures = append(sto.signatures, emptyMask)
	}
	return en
}

func (sto *storage) EnqueueNewEntities(n int, components ...Component) error {
	if !sto.Locked() {
		_, err := sto.NewEntities(n, components...)
		if err != nil {
			return fmt.Errorf("failed to create entities directly: %w", err)
		}
		return nil
	}
	sto.opQueue.enqueueOp(operation{
		typ:    opCreate,
		amount: n,
		comps:  components,
	})
	return nil
}

func (sto *storage) Valid(e Entity) bool {
	return sto.entities.IsValid(e)
}

func (sto *storage) Len() int {
	return sto.entities.Len()
}

// Entities yields every valid entity.
func (sto *storage) Entities() iter.Seq[Entity] {
	return sto.entities.All()
}

func (sto *storage) Signature(e Entity) mask.Mask {
	if !sto.entities.IsValid(e) {
		return emptyMask
	}
	return sto.signatures[e.Index()]
}

// attach runs put and, when it added the component, marks the signature and
// includes e in the owning group if that completed its signature.
func (sto *storage) attach(e Entity, row uint32, pool storedPool, put func() (bool, error)) (bool, error) {
	if sto.Locked() {
		return false, LockedStorageError{}
	}
	if !sto.entities.IsValid(e) {
		return false, InvalidEntityError{Entity: e}
	}
	added, err := put()
	if err != nil {
		return false, err
	}
	if !added {
		return false, nil
	}
	sig := &sto.signatures[e.Index()]
	sig.Mark(row)
	if g := sto.owners[row]; g != nil && sig.ContainsAll(g.signature) {
		g.Include(e)
	}
	return true, nil
}

// detach excludes e from the owning group while it still satisfies it, then
// erases it from the pool.
func (sto *storage) detach(e Entity, row uint32, pool storedPool) bool {
	if !pool.Contains(e) {
		return false
	}
	sig := &sto.signatures[e.Index()]
	if g := sto.owners[row]; g != nil && sig.ContainsAll(g.signature) {
		g.Exclude(e)
	}
	pool.Erase(e)
	sig.Unmark(row)
	return true
}

func (sto *storage) AddComponent(e Entity, c Component) error {
	pool, row := sto.poolFor(c)
	_, err := sto.attach(e, row, pool, func() (bool, error) {
		return pool.emplaceZero(e), nil
	})
	return err
}

func (sto *storage) RemoveComponent(e Entity, c Component) (bool, error) {
	if sto.Locked() {
		return false, LockedStorageError{}
	}
	if !sto.entities.IsValid(e) {
		return false, nil
	}
	pool, row, ok := sto.lookup(c)
	if !ok {
		return false, nil
	}
	return sto.detach(e, row, pool), nil
}

func (sto *storage) HasComponent(e Entity, c Component) bool {
	pool, _, ok := sto.lookup(c)
	return ok && pool.Contains(e)
}

func (sto *storage) EnqueueAddComponent(e Entity, c Component) error {
	if !sto.Locked() {
		return sto.AddComponent(e, c)
	}
	sto.opQueue.EnqueueComponentOp(opAddComponent, e, sto.register(c), c, func() error {
		return sto.AddComponent(e, c)
	})
	return nil
}

func (sto *storage) EnqueueRemoveComponent(e Entity, c Component) error {
	if !sto.Locked() {
		_, err := sto.RemoveComponent(e, c)
		return err
	}
	sto.opQueue.EnqueueComponentOp(opRemoveComponent, e, sto.register(c), c, func() error {
		_, err := sto.RemoveComponent(e, c)
		return err
	})
	return nil
}

// DestroyEntities removes every component of each entity and banishes it.
// Entities that are already invalid are skipped.
func (sto *storage) DestroyEntities(entities ...Entity) error {
	if sto.Locked() {
		return LockedStorageError{}
	}
	for _, en := range entities {
		if !sto.entities.IsValid(en) {
			continue
		}
		for row, pool := range sto.pools {
			sto.detach(en, row, pool)
		}
		sto.signatures[en.Index()] = emptyMask
		sto.entities.Banish(en)
	}
	return nil
}

func (sto *storage) EnqueueDestroyEntities(entities ...Entity) error {
	if !sto.Locked() {
		return sto.DestroyEntities(entities...)
	}
	sto.opQueue.EnqueueDestroy(entities)
	return nil
}

// DestroyAll empties every pool and banishes every entity.
func (sto *storage) DestroyAll() error {
	if sto.Locked() {
		return LockedStorageError{}
	}
	for _, pool := range sto.pools {
		pool.Clear()
	}
	for _, g := range sto.groups {
		g.length = 0
	}
	clear(sto.signatures)
	sto.entities.BanishAll()
	return nil
}

// Group returns the group over the pools of components, forming and
// harmonizing it on first request. A pool can be reordered by one group only.
func (sto *storage) Group(components ...Component) (*Group, error) {
	if sto.Locked() {
		return nil, LockedStorageError{}
	}
	var signature mask.Mask
	pools := make([]PoolContract, 0, len(components))
	rows := make([]uint32, 0, len(components))
	comps := make([]Component, 0, len(components))
	for _, c := range components {
		pool, row := sto.poolFor(c)
		var bit mask.Mask
		bit.Mark(row)
		if signature.ContainsAll(bit) {
			continue
		}
		signature.Mark(row)
		pools = append(pools, pool)
		rows = append(rows, row)
		comps = append(comps, c)
	}
	if len(pools) < 2 {
		return nil, GroupSizeError{Count: len(pools)}
	}
	if g, ok := sto.groups[signature]; ok {
		return g, nil
	}
	for i, row := range rows {
		if sto.owners[row] != nil {
			return nil, GroupConflictError{Component: comps[i]}
		}
	}

	g := &Group{pools: pools, signature: signature}
	included := g.Harmonize()
	for _, row := range rows {
		sto.owners[row] = g
	}
	sto.groups[signature] = g
	sto.logger.Debug("group formed",
		zap.Int("pools", len(pools)),
		zap.Int("harmonized", included),
	)
	return g, nil
}

// Tidy releases empty sparse pages in every pool.
func (sto *storage) Tidy() int {
	freed := 0
	for _, pool := range sto.pools {
		freed += pool.Tidy()
	}
	sto.logger.Debug("tidied sparse pages", zap.Int("freed", freed))
	return freed
}

func (sto *storage) Locked() bool {
	return sto.cursorLocks > 0 || sto.locks != emptyMask
}

// AddLock holds the storage locked under bit until RemoveLock(bit).
func (sto *storage) AddLock(bit uint32) {
	sto.locks.Mark(bit)
}

// RemoveLock releases bit and flushes queued operations once nothing holds
// the storage.
func (sto *storage) RemoveLock(bit uint32) error {
	var held mask.Mask
	held.Mark(bit)
	if !sto.locks.ContainsAll(held) {
		return LockBitError{Bit: bit}
	}
	sto.locks.Unmark(bit)
	if sto.Locked() {
		return nil
	}
	return sto.processOperationQueue()
}

// Lock is taken by cursors for the duration of an iteration.
func (sto *storage) Lock() {
	sto.cursorLocks++
}

func (sto *storage) Unlock() error {
	if sto.cursorLocks > 0 {
		sto.cursorLocks--
	}
	if sto.Locked() {
		return nil
	}
	return sto.processOperationQueue()
}
