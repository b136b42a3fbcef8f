package schema

import (
	"cuelang.org/go/cue"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/pipeline/modifiers"
	"github.com/roach88/strata/internal/value"
)

// flags maps CUE flag names to the Field booleans they set.
var flags = []struct {
	name string
	set  func(*object.Field)
}{
	{"primary", func(f *object.Field) { f.Primary = true }},
	{"required", func(f *object.Field) { f.Required = true }},
	{"readonly", func(f *object.Field) { f.ReadOnly = true }},
	{"writeonly", func(f *object.Field) { f.WriteOnly = true }},
	{"virtual", func(f *object.Field) { f.Virtual = true }},
	{"internal", func(f *object.Field) { f.Internal = true }},
}

var fieldKeys = map[string]bool{
	"type": true, "default": true, "onSet": true, "onSave": true, "onOutput": true,
	"primary": true, "required": true, "readonly": true, "writeonly": true,
	"virtual": true, "internal": true,
}

// CompileModel parses a CUE model struct into a Model.
//
// The CUE value should be the model struct itself, e.g.:
//
//	v := cuecontext.New().CompileString(src)
//	m, err := CompileModel(v.LookupPath(cue.ParsePath("model.User")), reg)
func CompileModel(v cue.Value, reg *modifiers.Registry) (*object.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("model", err)
	}

	var name string
	if sels := v.Path().Selectors(); len(sels) > 0 {
		name = sels[len(sels)-1].String()
	}
	base := "model." + name

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   base + ".fields",
			Message: "fields are required",
			Pos:     v.Pos(),
		}
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(base+".fields", err)
	}

	var fields []*object.Field
	for iter.Next() {
		f, err := compileField(base+".fields."+iter.Label(), iter.Label(), iter.Value(), reg)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	m, err := object.NewModel(name, fields...)
	if err != nil {
		return nil, &CompileError{Field: base, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return m, nil
}

func compileField(path, name string, v cue.Value, reg *modifiers.Registry) (*object.Field, error) {
	f := &object.Field{Name: name, Type: value.TypeAny}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(path, err)
	}
	for iter.Next() {
		if !fieldKeys[iter.Label()] {
			return nil, &CompileError{
				Field:   path + "." + iter.Label(),
				Message: "unknown field attribute",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	if tv := v.LookupPath(cue.ParsePath("type")); tv.Exists() {
		s, err := tv.String()
		if err != nil {
			return nil, formatCUEError(path+".type", err)
		}
		t, err := value.ParseType(s)
		if err != nil {
			return nil, &CompileError{Field: path + ".type", Message: err.Error(), Pos: tv.Pos(), Err: err}
		}
		f.Type = t
	}

	for _, flag := range flags {
		fv := v.LookupPath(cue.ParsePath(flag.name))
		if !fv.Exists() {
			continue
		}
		b, err := fv.Bool()
		if err != nil {
			return nil, formatCUEError(path+"."+flag.name, err)
		}
		if b {
			flag.set(f)
		}
	}

	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		arg, err := CompileArgument(path+".default", dv, reg)
		if err != nil {
			return nil, err
		}
		f.Default = &arg
	}

	hooks := []struct {
		key string
		dst *pipeline.Pipeline
	}{
		{"onSet", &f.OnSet},
		{"onSave", &f.OnSave},
		{"onOutput", &f.OnOutput},
	}
	for _, hook := range hooks {
		pv := v.LookupPath(cue.ParsePath(hook.key))
		if !pv.Exists() {
			continue
		}
		p, err := CompilePipeline(path+"."+hook.key, pv, reg)
		if err != nil {
			return nil, err
		}
		*hook.dst = p
	}
	return f, nil
}

// CompileGraph compiles every model under the top-level "model" struct.
// In LoadModeCollectAll it keeps going after a failing model and returns
// every error.
func CompileGraph(v cue.Value, reg *modifiers.Registry, mode LoadMode) (*object.Graph, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError("cue", err)}
	}
	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, []error{&CompileError{Field: "model", Message: "no models found", Pos: v.Pos()}}
	}
	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError("model", err)}
	}

	var (
		models []*object.Model
		errs   []error
	)
	for iter.Next() {
		m, err := CompileModel(iter.Value(), reg)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return nil, errs
			}
			continue
		}
		models = append(models, m)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	g, err := object.NewGraph(models...)
	if err != nil {
		return nil, []error{&CompileError{Field: "model", Message: err.Error(), Err: err}}
	}
	return g, nil
}
