package storage

import (
	"time"
)

type StoreGroup byte

const (
	StoreGroupGenerator StoreGroup = iota
	StoreGroupGateway
)

var (
	StoreGroupToString = map[StoreGroup]string{
		StoreGroupGenerator: "generator",
		StoreGroupGateway:   "gateway",
	}
	StoreGroupFromString = map[string]StoreGroup{
		"generator": StoreGroupGenerator,
		"gateway":   StoreGroupGateway,
	}
)

// resources
const (
	// generator
	Profiles = "profiles"
)

type Getter interface {
	Get(key string) (interface{}, error)
}

type Lister interface {
	List(key string) (interface{}, error)
}

type Creater interface {
	Create(key string, obj interface{}) (interface{}, error)
}

type Updater interface {
	Update(key, version string, obj interface{}) (interface{}, error)
}

type Deleter interface {
	Delete(key, version string) (interface{}, error)
}

type Storage interface {
	Getter
	Lister
	Creater
	Updater
	Deleter
}

type FileInfo struct {
	Path    string
	ModTime time.Time
}
