// Package registry is a small concurrent name to value index backed by haxmap.
package registry

import "github.com/alphadose/haxmap"

type Registry[T any] interface {
	Get(name string) (T, bool)
	Add(name string, value T)
	// GetOrAdd stores the value produced by valueFn unless name is taken.
	// The boolean reports whether the value was already present.
	GetOrAdd(name string, valueFn func() T) (T, bool)
	Del(name string)
	Len() int
	// Range visits entries in no particular order until fn returns false.
	Range(fn func(name string, value T) bool)
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
}

func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *registry[T]) Add(name string, value T) {
	r.values.Set(name, value)
}

func (r *registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	return r.values.GetOrCompute(name, valueFn)
}

func (r *registry[T]) Del(name string) {
	r.values.Del(name)
}

func (r *registry[T]) Len() int {
	return int(r.values.Len())
}

func (r *registry[T]) Range(fn func(name string, value T) bool) {
	r.values.ForEach(fn)
}
