package stockpile

import "github.com/TheBitDrifter/table"

type factory struct{}

var Factory factory

func (f factory) NewStorage(schema table.Schema) Storage {
	return newStorage(schema)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(query QueryNode, storage Storage) *Cursor {
	return newCursor(query, storage)
}

func (f factory) NewGroupCursor(group *Group, storage Storage) *Cursor {
	return newGroupCursor(group, storage)
}

func (f factory) NewPoolCursor(component Component, storage Storage) *Cursor {
	return newPoolCursor(component, storage)
}

func (f factory) NewEntitySlotAllocator() *EntitySlotAllocator {
	return NewEntitySlotAllocator(Config.initialCapacity)
}

func FactoryNewComponent[T any]() AccessibleComponent[T] {
	return AccessibleComponent[T]{
		ElementType: table.FactoryNewElementType[T](),
	}
}
