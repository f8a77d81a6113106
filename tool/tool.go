package tool

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/pkg/reflectx"
	"github.com/casualjim/brainstorm/pkg/stdx"
	"github.com/fogfish/opts"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Definition is a named function an agent can carry.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]string
	Function    any
}

type Option = opts.Option[Definition]

var (
	Name        = opts.ForName[Definition, string]("Name")
	Description = opts.ForName[Definition, string]("Description")
)

// Parameters names the function arguments in order.
func Parameters(parameters ...string) Option {
	return opts.Type[Definition](func(o *Definition) error {
		o.Parameters = make(map[string]string, len(parameters))
		for i, p := range parameters {
			o.Parameters[paramKey(i)] = p
		}
		return nil
	})
}

// New creates a definition for f. Without a Name option the function name is used.
func New(f any, options ...Option) (Definition, error) {
	if !reflectx.IsFunction(f) {
		return Definition{}, errs.Validation("tool.new", "provided value is not a function")
	}

	var def Definition
	if err := opts.Apply(&def, options); err != nil {
		return Definition{}, err
	}
	def.Function = f
	if strings.TrimSpace(def.Name) == "" {
		def.Name = reflectx.FunctionName(f)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Must is like New but panics on error.
func Must(f any, options ...Option) Definition {
	return stdx.Must1(New(f, options...))
}

// Validate checks that the definition is usable by an agent.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errs.Validation("tool.validate", "tool name is required")
	}
	if !reflectx.IsFunction(d.Function) {
		return errs.Validation("tool.validate", fmt.Sprintf("tool %q: function must be a func, got %T", d.Name, d.Function))
	}
	return nil
}

func (d Definition) String() string {
	if d.Description == "" {
		return d.Name
	}
	return d.Name + ": " + d.Description
}

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// Schema describes the function arguments as a JSON object schema.
func (d Definition) Schema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:        "object",
		Description: d.Description,
		Properties:  orderedmap.New[string, *jsonschema.Schema](),
	}
	if !reflectx.IsFunction(d.Function) {
		return schema
	}

	typ := reflect.TypeOf(d.Function)
	start := 0
	if reflectx.AcceptsContext(d.Function) {
		start = 1
	}

	var required []string
	for i := start; i < typ.NumIn(); i++ {
		name := paramKey(i - start)
		if p, ok := d.Parameters[name]; ok {
			name = p
		}

		prop := reflector.ReflectFromType(typ.In(i))
		prop.Version = ""
		schema.Properties.Set(name, prop)
		required = append(required, name)
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}

func paramKey(i int) string {
	return fmt.Sprintf("param%d", i)
}
