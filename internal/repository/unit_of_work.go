package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the repositories bound to one database handle
type Repositories struct {
	Lists   ListRepository
	Entries EntryRepository
	Slots   SlotRepository
}

// NewRepositories binds all repositories to db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Lists:   NewListRepository(db),
		Entries: NewEntryRepository(db),
		Slots:   NewSlotRepository(db),
	}
}

// UnitOfWork runs a function against repositories sharing one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos *Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a UnitOfWork backed by GORM transactions
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(repos *Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
