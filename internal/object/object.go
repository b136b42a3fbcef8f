package object

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

const msgPipelineSignal = "Pipeline modifiers are invalid."

// Object is one record of a Model.
//
// Every public method holds the record's mutex for its whole duration, so
// pipeline evaluation for a single record never interleaves.
type Object struct {
	mu sync.Mutex

	model    *Model
	conn     Connection
	identity pipeline.Record
	action   pipeline.Action
	logger   *slog.Logger

	values   value.Object
	modified []string
	previous value.Object
	selected []string

	initialized bool
	isNew       bool

	// draft is non-nil while Set or Save is evaluating.
	draft *draft
}

// Option configures an Object.
type Option func(*Object)

// WithConnection attaches the storage Save, Delete and unique use.
func WithConnection(conn Connection) Option {
	return func(o *Object) {
		o.conn = conn
	}
}

// WithIdentity sets the record acting on this one.
func WithIdentity(identity pipeline.Record) Option {
	return func(o *Object) {
		o.identity = identity
	}
}

// WithAction sets the action pipelines observe.
func WithAction(action pipeline.Action) Option {
	return func(o *Object) {
		o.action = action
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Object) {
		o.logger = logger
	}
}

// New returns an uninitialized, new record of m.
func New(m *Model, opts ...Option) *Object {
	o := &Object{
		model:  m,
		isNew:  true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// draft is the working copy a Set or Save evaluates into.
type draft struct {
	values   value.Object
	modified []string
	previous value.Object
	isNew    bool
}

func (o *Object) begin() *draft {
	d := &draft{
		values:   o.values,
		modified: slices.Clone(o.modified),
		previous: o.previous,
		isNew:    o.isNew,
	}
	o.draft = d
	return d
}

func (o *Object) commit(d *draft) {
	o.values = d.values
	o.modified = d.modified
	o.previous = d.previous
	o.draft = nil
}

// write stages v under key. Writes to a persisted record are tracked; the
// first write since the last save keeps the previous value.
func (d *draft) write(key string, v value.Value) {
	if !d.isNew {
		if !slices.Contains(d.modified, key) {
			d.modified = append(d.modified, key)
		}
		if !d.previous.Has(key) {
			prev, ok := d.values.Get(key)
			if !ok {
				prev = value.Null{}
			}
			d.previous = d.previous.With(key, prev)
		}
	}
	d.values = d.values.With(key, v)
}

// Set runs input through the on-set pipelines of its fields.
//
// The first call on a new record also evaluates the default of every absent
// field. Any failure leaves the record unchanged.
func (o *Object) Set(ctx context.Context, input value.Object) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.set(ctx, input)
}

// SetJSON decodes a JSON object against the declared field types and Sets
// it.
func (o *Object) SetJSON(ctx context.Context, data []byte) error {
	input, err := value.ParseJSONObject(data)
	if err != nil {
		return &ActionError{
			Kind:    KindTypeMismatch,
			Message: "Input is not a JSON object.",
			Model:   o.model.Name(),
			Err:     err,
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.set(ctx, input)
}

func (o *Object) set(ctx context.Context, input value.Object) error {
	if bad := unallowed(input, o.model.inputKeys); len(bad) > 0 {
		return keysUnallowed(o.model.Name(), bad)
	}
	input, err := o.decode(input)
	if err != nil {
		return err
	}

	d := o.begin()
	defer func() { o.draft = nil }()

	applyDefaults := !o.initialized && o.isNew
	for _, f := range o.model.fields {
		raw, supplied := input.Get(f.Name)
		switch {
		case supplied:
			v, err := o.run(ctx, f, f.OnSet, raw)
			if err != nil {
				return err
			}
			d.write(f.Name, v)
		case applyDefaults && f.Default != nil:
			v, err := o.evalDefault(ctx, f)
			if err != nil {
				return err
			}
			d.write(f.Name, v)
		}
	}

	o.commit(d)
	o.initialized = true
	return nil
}

// decode checks every supplied value against its field type before any
// pipeline runs.
func (o *Object) decode(input value.Object) (value.Object, error) {
	var decodeErr error
	out := input
	input.Range(func(key string, raw value.Value) bool {
		f, _ := o.model.Field(key)
		v, err := value.Decode(raw, f.Type)
		if err != nil {
			decodeErr = &ActionError{
				Kind:    KindTypeMismatch,
				Message: err.Error(),
				Model:   o.model.Name(),
				Path:    []string{key},
				Err:     err,
			}
			return false
		}
		out = out.With(key, v)
		return true
	})
	return out, decodeErr
}

func (o *Object) evalDefault(ctx context.Context, f *Field) (value.Value, error) {
	v, err := f.Default.Resolve(ctx, o.fieldCtx(f, value.Null{}))
	if err != nil {
		return nil, validationFailed(o.model.Name(), []string{f.Name}, err.Error())
	}
	v, err = value.Decode(v, f.Type)
	if err != nil {
		return nil, internalInconsistency(o.model.Name(), []string{f.Name}, "Default does not match field type.")
	}
	return v, nil
}

func (o *Object) fieldCtx(f *Field, v value.Value) pipeline.Ctx {
	return pipeline.New(v).
		WithPath(pipeline.Path{}.Key(f.Name)).
		WithRecord(recordView{o}).
		WithIdentity(o.identity).
		WithAction(o.action)
}

// run evaluates p for field f and maps the outcome to the record error
// surface.
func (o *Object) run(ctx context.Context, f *Field, p pipeline.Pipeline, v value.Value) (value.Value, error) {
	if p.IsEmpty() {
		return v, nil
	}
	out := p.Process(ctx, o.fieldCtx(f, v))
	switch out.State() {
	case pipeline.StateInvalid:
		return nil, validationFailed(o.model.Name(), out.Path().Strings(), out.Reason())
	case pipeline.StateTrue, pipeline.StateFalse:
		return nil, internalInconsistency(o.model.Name(), []string{f.Name}, msgPipelineSignal)
	}
	return out.Value(), nil
}

// Update writes trusted values without running pipelines or defaults.
// Keys must be save keys.
func (o *Object) Update(input value.Object) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.update(input)
}

// UpdateJSON is Update over a JSON object.
func (o *Object) UpdateJSON(data []byte) error {
	input, err := value.ParseJSONObject(data)
	if err != nil {
		return &ActionError{
			Kind:    KindTypeMismatch,
			Message: "Input is not a JSON object.",
			Model:   o.model.Name(),
			Err:     err,
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.update(input)
}

func (o *Object) update(input value.Object) error {
	if bad := unallowed(input, o.model.saveKeys); len(bad) > 0 {
		return keysUnallowed(o.model.Name(), bad)
	}
	input, err := o.decode(input)
	if err != nil {
		return err
	}
	d := o.begin()
	for _, f := range o.model.fields {
		if v, ok := input.Get(f.Name); ok {
			d.write(f.Name, v)
		}
	}
	o.commit(d)
	o.initialized = true
	return nil
}

// load replaces the record state with persisted data.
func (o *Object) load(data value.Object) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if bad := unallowed(data, o.model.saveKeys); len(bad) > 0 {
		return keysUnallowed(o.model.Name(), bad)
	}
	data, err := o.decode(data)
	if err != nil {
		return err
	}
	o.values = data
	o.modified = nil
	o.previous = value.Object{}
	o.isNew = false
	o.initialized = true
	return nil
}

// SetValue writes a single save key without running pipelines.
func (o *Object) SetValue(key string, v value.Value) error {
	return o.Update(value.NewObject(value.O(key, v)))
}

// Get returns the current value of key, or Null when unset.
func (o *Object) Get(key string) (value.Value, error) {
	if _, ok := o.model.Field(key); !ok {
		return nil, keysUnallowed(o.model.Name(), []string{key})
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if v, ok := o.values.Get(key); ok {
		return v, nil
	}
	return value.Null{}, nil
}

// Save runs the on-save pipelines, checks required fields and persists the
// record through its connection, if any.
func (o *Object) Save(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	d := o.begin()
	defer func() { o.draft = nil }()

	for _, f := range o.model.fields {
		if !f.IsSave() || f.OnSave.IsEmpty() {
			continue
		}
		cur, ok := d.values.Get(f.Name)
		if !ok {
			cur = value.Null{}
		}
		v, err := o.run(ctx, f, f.OnSave, cur)
		if err != nil {
			return err
		}
		if !ok || !value.Equal(cur, v) {
			d.write(f.Name, v)
		}
	}

	for _, f := range o.model.fields {
		if !f.Required {
			continue
		}
		if v, ok := d.values.Get(f.Name); !ok || value.IsNull(v) {
			return validationFailed(o.model.Name(), []string{f.Name}, "Value is required.")
		}
	}

	if o.conn != nil {
		if err := o.persist(ctx, d.values); err != nil {
			return err
		}
	}

	d.modified = nil
	d.previous = value.Object{}
	o.commit(d)
	o.isNew = false
	o.initialized = true
	return nil
}

func (o *Object) persist(ctx context.Context, values value.Object) error {
	id, err := o.primaryKey(values)
	if err != nil {
		return err
	}
	pairs := make([]value.Pair, 0, len(o.model.saveKeys))
	for _, key := range o.model.saveKeys {
		v, ok := values.Get(key)
		if !ok {
			v = value.Null{}
		}
		pairs = append(pairs, value.O(key, v))
	}
	if err := o.conn.Save(ctx, o.model.Name(), id, value.NewObject(pairs...)); err != nil {
		return storageError(o.model.Name(), "save", err)
	}
	o.logger.DebugContext(ctx, "record saved",
		"model", o.model.Name(),
		"id", id,
		"new", o.isNew)
	return nil
}

func (o *Object) primaryKey(values value.Object) (string, error) {
	primary := o.model.Primary()
	if primary == nil {
		return "", internalInconsistency(o.model.Name(), nil, "Model has no primary field.")
	}
	id, ok := values.Get(primary.Name)
	if !ok || value.IsNull(id) {
		return "", internalInconsistency(o.model.Name(), []string{primary.Name}, "Primary key is not set.")
	}
	return pipeline.IDString(id), nil
}

// Delete removes the persisted record through the connection.
func (o *Object) Delete(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return internalInconsistency(o.model.Name(), nil, "Connection is not attached.")
	}
	id, err := o.primaryKey(o.values)
	if err != nil {
		return err
	}
	if err := o.conn.Delete(ctx, o.model.Name(), id); err != nil {
		return storageError(o.model.Name(), "delete", err)
	}
	o.logger.DebugContext(ctx, "record deleted", "model", o.model.Name(), "id", id)
	o.isNew = true
	return nil
}

// Select restricts Output to keys. Keys must be output keys.
func (o *Object) Select(keys ...string) error {
	for _, k := range keys {
		if !slices.Contains(o.model.outputKeys, k) {
			return keysUnallowed(o.model.Name(), []string{k})
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selected = slices.Clone(keys)
	return nil
}

// Deselect removes keys from the current selection.
func (o *Object) Deselect(keys ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sel := o.selected
	if sel == nil {
		sel = slices.Clone(o.model.outputKeys)
	}
	o.selected = slices.DeleteFunc(sel, func(k string) bool {
		return slices.Contains(keys, k)
	})
}

// Output returns the selected output fields, each run through its on-output
// pipeline. Unset fields are omitted.
func (o *Object) Output(ctx context.Context) (value.Object, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys := o.selected
	if keys == nil {
		keys = o.model.outputKeys
	}
	pairs := make([]value.Pair, 0, len(keys))
	for _, key := range keys {
		v, ok := o.values.Get(key)
		if !ok {
			continue
		}
		f, _ := o.model.Field(key)
		out, err := o.run(ctx, f, f.OnOutput, v)
		if err != nil {
			return value.Object{}, err
		}
		pairs = append(pairs, value.O(key, out))
	}
	return value.NewObject(pairs...), nil
}

// ToJSON renders Output as JSON.
func (o *Object) ToJSON(ctx context.Context) ([]byte, error) {
	out, err := o.Output(ctx)
	if err != nil {
		return nil, err
	}
	data, err := value.MarshalJSON(out)
	if err != nil {
		return nil, &ActionError{
			Kind:    KindInternalInconsistency,
			Message: "Output is not representable as JSON.",
			Model:   o.model.Name(),
			Err:     err,
		}
	}
	return data, nil
}

func (o *Object) Model() *Model {
	return o.model
}

func (o *Object) IsNew() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isNew
}

func (o *Object) IsInitialized() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initialized
}

// IsModified reports whether any field was written since the last save.
func (o *Object) IsModified() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.modified) > 0
}

// ModifiedFields lists the fields written since the last save, in write
// order.
func (o *Object) ModifiedFields() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.modified)
}

// Previous returns the value key held before its first write since the last
// save.
func (o *Object) Previous(key string) (value.Value, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.previous.Get(key)
}

// Values returns every stored field, including write-only and internal ones.
func (o *Object) Values() value.Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.values
}

// ID returns the primary key value, or Null.
func (o *Object) ID() value.Value {
	o.mu.Lock()
	defer o.mu.Unlock()
	return recordView{o}.ID()
}

// Record returns the read-only view modifiers see. Use it as the identity
// of another record.
func (o *Object) Record() pipeline.Record {
	return recordView{o}
}

// recordView is the pipeline.Record of an Object. It reads the running
// draft when one exists and does not lock: it is only consulted from
// pipelines the Object itself is driving, or after they finished.
type recordView struct {
	o *Object
}

func (r recordView) state() (value.Object, []string, value.Object, bool) {
	if d := r.o.draft; d != nil {
		return d.values, d.modified, d.previous, d.isNew
	}
	return r.o.values, r.o.modified, r.o.previous, r.o.isNew
}

func (r recordView) Model() string {
	return r.o.model.Name()
}

func (r recordView) ID() value.Value {
	primary := r.o.model.Primary()
	if primary == nil {
		return value.Null{}
	}
	v, ok := r.Get(primary.Name)
	if !ok {
		return value.Null{}
	}
	return v
}

func (r recordView) Get(key string) (value.Value, bool) {
	values, _, _, _ := r.state()
	return values.Get(key)
}

func (r recordView) Previous(key string) (value.Value, bool) {
	_, _, previous, _ := r.state()
	return previous.Get(key)
}

func (r recordView) IsNew() bool {
	_, _, _, isNew := r.state()
	return isNew
}

func (r recordView) IsModified(key string) bool {
	_, modified, _, _ := r.state()
	return slices.Contains(modified, key)
}

func (r recordView) Lookup() pipeline.Lookup {
	if r.o.conn == nil {
		return nil
	}
	return r.o.conn
}
