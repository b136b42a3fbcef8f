// Package schema compiles CUE model declarations into object Models whose
// pipelines are built through a modifiers.Registry.
//
// A schema declares models under the top-level "model" struct:
//
//	model: User: fields: {
//		id:    {type: "string", primary: true, readonly: true, default: {pipeline: ["uuid"]}}
//		email: {type: "string", required: true, onSet: ["trim", "toLowerCase", "isEmail"]}
//		age:   {type: "i32", onSet: [{gte: 18}]}
//	}
//
// A pipeline is a list of items. An item is a modifier name, or a one-key
// struct mapping the name to its argument. A list argument spreads into
// several arguments, so a single array argument is written [[...]].
// An argument {pipeline: [...]} is a nested pipeline and {fn: "name"} a
// host function registered with the Registry. Any other value is a literal.
//
// Errors carry the CUE source position of the offending value.
package schema
