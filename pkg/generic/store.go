package generic

import (
	"encoding/json"
	"gensetgateway/pkg/runtime"
	"gensetgateway/pkg/storage"
	"k8s.io/klog/v2"
	"os"
	"path/filepath"
	"reflect"
)

type Store struct {
	Group        string
	Resource     string
	resourceType reflect.Type
	client       storage.Storage
}

func NewStore(base string, group string, resource string, prototype runtime.Object) (*Store, error) {
	s := &Store{
		Group:        group,
		Resource:     resource,
		resourceType: getTypeOfResource(prototype),
	}

	client := &storage.FsClient{}
	client.Init(base, storage.StoreGroupFromString[group])
	s.client = client

	return s, nil
}

func (s *Store) Create(obj runtime.Object) (save runtime.Object, returnErr error) {
	accessor, _ := runtime.Accessor(obj)
	key := filepath.Join(s.Resource, accessor.GetID())
	if saved, err := s.client.Create(key, obj); err == nil {
		save = saved.(runtime.Object)
	} else {
		returnErr = err
	}
	return
}

func (s *Store) Update(obj runtime.Object) (update runtime.Object, returnErr error) {
	accessor, _ := runtime.Accessor(obj)
	key := filepath.Join(s.Resource, accessor.GetID())
	if updated, err := s.client.Update(key, accessor.GetVersion(), obj); err == nil {
		update = updated.(runtime.Object)
	} else {
		returnErr = err
	}
	return
}

func (s *Store) Delete(obj runtime.Object) (delete runtime.Object, returnErr error) {
	accessor, _ := runtime.Accessor(obj)
	key := filepath.Join(s.Resource, accessor.GetID())
	if _, err := s.client.Delete(key, accessor.GetVersion()); err == nil {
		delete = obj
	} else {
		returnErr = err
	}
	return
}

func (s *Store) LoadResource() ([]runtime.Object, error) {
	objs, err := s.client.List(s.Resource)
	if err != nil {
		return nil, err
	}

	var ret []runtime.Object
	if files, ok := objs.([]*storage.FileInfo); ok {
		for _, file := range files {
			func() {
				obj := reflect.New(s.resourceType).Interface().(runtime.Object)
				f, err := os.Open(file.Path)
				defer f.Close()
				if err != nil {
					klog.V(2).InfoS("Failed to open", "file", file.Path, "resource", s.Resource, "err", err)
					return
				}
				if err = json.NewDecoder(f).Decode(obj); err != nil {
					klog.V(3).InfoS("Failed to unmarshal", "file", file.Path, "resource", s.Resource, "err", err)
					return
				}
				ret = append(ret, obj)
			}()
		}
	}
	return ret, nil
}

func getTypeOfResource(obj runtime.Object) reflect.Type {
	t := reflect.TypeOf(obj)
	if t.Kind() != reflect.Ptr {
		panic("All types must be pointers to structs.")
	}
	t = t.Elem()
	if t.Kind() != reflect.Struct {
		panic("All types must be pointers to structs.")
	}
	return t
}
