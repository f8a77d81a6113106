// Package reflectx inspects functions at runtime.
package reflectx

import (
	"context"
	"reflect"
	"runtime"
	"strings"
)

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

func IsFunction(fn any) bool {
	return fn != nil && reflect.TypeOf(fn).Kind() == reflect.Func
}

// FunctionName returns the declared name of fn. Named function types report
// the type name, methods the method name and closures the name the compiler
// gave them. Values that are not functions yield "".
func FunctionName(fn any) string {
	if !IsFunction(fn) {
		return ""
	}
	val := reflect.ValueOf(fn)
	if name := val.Type().Name(); name != "" {
		return name
	}
	rf := runtime.FuncForPC(val.Pointer())
	if rf == nil {
		return val.Type().String()
	}
	name := rf.Name()
	if lastDot := strings.LastIndex(name, "."); lastDot >= 0 {
		name = name[lastDot+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

// AcceptsContext reports whether the first argument of fn is a context.Context.
func AcceptsContext(fn any) bool {
	if !IsFunction(fn) {
		return false
	}
	typ := reflect.TypeOf(fn)
	return typ.NumIn() > 0 && typ.In(0).Implements(contextType)
}
