package modifiers

import (
	"context"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// Self replaces the value with a field of the owning record. During Set and
// Save the staged value of the running call is visible.
func Self(key string) pipeline.Modifier {
	return selfNamed("self", key)
}

// ObjectValue is Self under its longer name.
func ObjectValue(key string) pipeline.Modifier {
	return selfNamed("objectValue", key)
}

func selfNamed(name, key string) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		rec := c.Record()
		if rec == nil {
			return c.Invalid(msgNoRecord)
		}
		v, ok := rec.Get(key)
		if !ok {
			v = value.Null{}
		}
		return c.WithValue(v)
	})
}

// Previous replaces the value with what key held before its first
// modification since the last save.
func Previous(key string) pipeline.Modifier {
	return pipeline.ValueFunc("previous", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		rec := c.Record()
		if rec == nil {
			return c.Invalid(msgNoRecord)
		}
		v, ok := rec.Previous(key)
		if !ok {
			v = value.Null{}
		}
		return c.WithValue(v)
	})
}

// IsNew emits a condition: the owning record has never been saved.
func IsNew() pipeline.Modifier {
	return pipeline.ValueFunc("isNew", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		rec := c.Record()
		if rec == nil {
			return c.Invalid(msgNoRecord)
		}
		return c.Condition(rec.IsNew())
	})
}

// IsModified emits a condition: key was written since the last save.
func IsModified(key string) pipeline.Modifier {
	return pipeline.ValueFunc("isModified", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		rec := c.Record()
		if rec == nil {
			return c.Invalid(msgNoRecord)
		}
		return c.Condition(rec.IsModified(key))
	})
}

// Identity replaces the value with a field of the acting identity.
func Identity(key string) pipeline.Modifier {
	return pipeline.ValueFunc("identity", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		id := c.Identity()
		if id == nil {
			return c.Invalid(msgNoIdentity)
		}
		v, ok := id.Get(key)
		if !ok {
			v = value.Null{}
		}
		return c.WithValue(v)
	})
}

// IsSelf emits a condition: the acting identity is the owning record.
func IsSelf() pipeline.Modifier {
	return pipeline.ValueFunc("isSelf", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		if c.Record() == nil {
			return c.Invalid(msgNoRecord)
		}
		if c.Identity() == nil {
			return c.Invalid(msgNoIdentity)
		}
		return c.Condition(pipeline.SameRecord(c.Record(), c.Identity()))
	})
}

// Unique requires that no other persisted record of the same model holds
// the value in field. An empty field uses the last key of the Ctx path.
// Null is always unique.
func Unique(field string) pipeline.Modifier {
	return pipeline.ValueFunc("unique", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		rec := c.Record()
		if rec == nil {
			return c.Invalid(msgNoRecord)
		}
		lookup := rec.Lookup()
		if lookup == nil {
			return c.Invalid(msgNoConnection)
		}
		if value.IsNull(c.Value()) {
			return c
		}
		name := field
		if name == "" {
			name = lastKey(c.Path())
		}
		if name == "" {
			return c.Invalid("Field is not known.")
		}
		exists, err := lookup.Exists(ctx, rec.Model(), name, c.Value(), pipeline.IDString(rec.ID()))
		if err != nil {
			return c.Invalid(err.Error())
		}
		if exists {
			return c.Invalid("Value is not unique.")
		}
		return c
	})
}

func lastKey(p pipeline.Path) string {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsIndex {
			return p[i].Key
		}
	}
	return ""
}
