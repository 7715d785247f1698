package dummydb

import (
	"sync"

	"github.com/trezcool/udahili/core/admission"
)

type (
	DB struct {
		application *applicationTable
	}

	applicationTable struct {
		sync.RWMutex
		table map[string]*admission.Application
	}
)

func Open() (*DB, error) {
	db := &DB{
		application: &applicationTable{table: make(map[string]*admission.Application)},
	}
	return db, nil
}
