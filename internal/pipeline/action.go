package pipeline

import "slices"

// Action is the kind of mutation that triggered an evaluation.
type Action string

const (
	ActionNone     Action = ""
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionUpsert   Action = "upsert"
	ActionDelete   Action = "delete"
	ActionFind     Action = "find"
	ActionSignIn   Action = "signIn"
	ActionIdentity Action = "identity"
)

// ValidActions lists the actions accepted by ParseAction.
var ValidActions = map[Action]bool{
	ActionCreate:   true,
	ActionUpdate:   true,
	ActionUpsert:   true,
	ActionDelete:   true,
	ActionFind:     true,
	ActionSignIn:   true,
	ActionIdentity: true,
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	return a, ValidActions[a]
}

// Passes reports whether a is one of set.
func (a Action) Passes(set []Action) bool {
	return slices.Contains(set, a)
}
