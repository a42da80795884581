package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles one repository per aggregate. Every repository is a
// cheap wrapper over the shared *gorm.DB; services re-bundle them over a
// transaction handle when an entity write and its audit entries must commit
// as one unit.
type Repositories struct {
	Dictionary    *DictionaryRepository
	Project       *ProjectRepository
	Revenue       *RevenueRepository
	Cost          *CostRepository
	ChangeHistory *ChangeHistoryRepository
	User          *UserRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Dictionary:    NewDictionaryRepository(db),
		Project:       NewProjectRepository(db),
		Revenue:       NewRevenueRepository(db),
		Cost:          NewCostRepository(db),
		ChangeHistory: NewChangeHistoryRepository(db),
		User:          NewUserRepository(db),
	}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
