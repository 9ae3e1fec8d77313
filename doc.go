/*
Package stockpile provides sparse-set component storage for games and simulations.

Entities are plain (index, generation) values issued by an EntitySlotAllocator.
Each component type lives in its own Pool: a paged sparse index pointing into
two dense, index-aligned slices of entities and values. Membership tests,
inserts and removals are O(1); iteration is a linear walk over dense memory.

Groups keep several pools co-arranged so that the entities present in all of
them form the same leading run in every pool. Iterating a group therefore never
checks membership.

Core Concepts:

  - Entity: An index plus a generation; stale handles never validate.
  - Pool: Dense storage of one component type (tags store no values).
  - Group: A shared, ordered prefix over two or more pools.
  - Storage: Owns the allocator, the pools and the groups and keeps them in step.

Basic Usage:

	schema := table.Factory.NewSchema()
	storage := stockpile.Factory.NewStorage(schema)

	position := stockpile.FactoryNewComponent[Position]()
	velocity := stockpile.FactoryNewComponent[Velocity]()

	entities, _ := storage.NewEntities(100, position, velocity)
	velocity.Get(storage, entities[0]).X = 1

	movers, _ := storage.Group(position, velocity)
	cursor := stockpile.Factory.NewGroupCursor(movers, storage)
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

Nothing in this package is safe for concurrent use. Mutating a pool while
ranging over it directly may skip or revisit elements; walk with a Cursor and
use the Enqueue* methods to defer changes instead.
*/
package stockpile
