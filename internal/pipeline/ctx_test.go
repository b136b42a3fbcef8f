package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/strata/internal/value"
)

func TestNewCtx(t *testing.T) {
	c := New(value.String("x"))
	assert.True(t, c.IsValue())
	assert.Equal(t, value.String("x"), c.Value())
	assert.Empty(t, c.Reason())
	assert.Empty(t, c.Path())

	assert.Equal(t, value.Null{}, New(nil).Value())
}

func TestInvalidIsSticky(t *testing.T) {
	c := New(value.I64(1)).Invalid("first")

	tests := []struct {
		name string
		next Ctx
	}{
		{"WithValue", c.WithValue(value.I64(2))},
		{"Invalid", c.Invalid("second")},
		{"True", c.True()},
		{"False", c.False()},
		{"Invalidf", c.Invalidf("third %d", 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.next.IsInvalid())
			assert.Equal(t, "first", tt.next.Reason())
			assert.Equal(t, value.I64(1), tt.next.Value())
		})
	}
}

func TestInvalidStillTakesPath(t *testing.T) {
	c := New(value.Null{}).Invalid("bad").Key("items").Index(2)

	assert.True(t, c.IsInvalid())
	assert.Equal(t, "items[2]", c.Path().String())
}

func TestRecoverClearsInvalidity(t *testing.T) {
	c := New(value.I64(1)).Invalid("bad").Recover(value.String("fallback"))

	assert.True(t, c.IsValue())
	assert.Empty(t, c.Reason())
	assert.Equal(t, value.String("fallback"), c.Value())
}

func TestConditionSignals(t *testing.T) {
	c := New(value.I64(3)).True()
	assert.Equal(t, StateTrue, c.State())
	assert.True(t, c.IsCondition())
	assert.True(t, c.Passes())

	f := c.False()
	assert.Equal(t, StateFalse, f.State())
	assert.False(t, f.Passes())

	// WithValue clears a condition back to a value.
	v := f.WithValue(value.I64(4))
	assert.True(t, v.IsValue())
	assert.True(t, v.Passes())
}

func TestCtxMethodsDoNotMutateReceiver(t *testing.T) {
	base := New(value.I64(1)).Key("a")
	_ = base.Key("b")
	_ = base.WithValue(value.I64(2))
	_ = base.Invalid("x")

	assert.Equal(t, "a", base.Path().String())
	assert.Equal(t, value.I64(1), base.Value())
	assert.True(t, base.IsValue())
}

func TestDeriveKeepsMetadata(t *testing.T) {
	rec := &fakeRecord{model: "User"}
	c := New(value.I64(1)).WithRecord(rec).WithAction(ActionCreate).Key("tags").Invalid("x")

	d := c.Derive(value.String("elem"))
	assert.True(t, d.IsValue())
	assert.Equal(t, value.String("elem"), d.Value())
	assert.Same(t, rec, d.Record())
	assert.Equal(t, ActionCreate, d.Action())
	assert.Equal(t, "tags", d.Path().String())
}

func TestPathString(t *testing.T) {
	p := Path{}.Key("user").Key("emails").Index(0).Key("address")
	assert.Equal(t, "user.emails[0].address", p.String())
	assert.Equal(t, []string{"user", "emails", "0", "address"}, p.Strings())

	joined := Path{}.Key("a").Join(Path{}.Index(1))
	assert.Equal(t, "a[1]", joined.String())
}

func TestActionPasses(t *testing.T) {
	assert.True(t, ActionCreate.Passes([]Action{ActionUpdate, ActionCreate}))
	assert.False(t, ActionDelete.Passes([]Action{ActionUpdate, ActionCreate}))
	assert.False(t, ActionNone.Passes(nil))

	a, ok := ParseAction("signIn")
	assert.True(t, ok)
	assert.Equal(t, ActionSignIn, a)

	_, ok = ParseAction("launch")
	assert.False(t, ok)
}

func TestSameRecord(t *testing.T) {
	a := &fakeRecord{model: "User", id: value.String("1")}
	b := &fakeRecord{model: "User", id: value.String("1")}
	c := &fakeRecord{model: "Post", id: value.String("1")}
	unsaved := &fakeRecord{model: "User"}

	assert.True(t, SameRecord(a, b))
	assert.False(t, SameRecord(a, c))
	assert.False(t, SameRecord(a, unsaved))
	assert.False(t, SameRecord(a, nil))
}
