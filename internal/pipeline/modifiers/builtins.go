package modifiers

import (
	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

func noArgs(name string, ctor func() pipeline.Modifier) Builder {
	return func(args []pipeline.Argument) (pipeline.Modifier, error) {
		if err := arity(name, args, 0, 0); err != nil {
			return nil, err
		}
		return ctor(), nil
	}
}

func oneArg(name string, ctor func(pipeline.Argument) pipeline.Modifier) Builder {
	return func(args []pipeline.Argument) (pipeline.Modifier, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		return ctor(args[0]), nil
	}
}

func keyArg(name string, ctor func(string) pipeline.Modifier) Builder {
	return func(args []pipeline.Argument) (pipeline.Modifier, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		key, err := literalString(name, args[0])
		if err != nil {
			return nil, err
		}
		return ctor(key), nil
	}
}

func onePipeline(name string, ctor func(pipeline.Pipeline) pipeline.Modifier) Builder {
	return func(args []pipeline.Argument) (pipeline.Modifier, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		p, err := pipelineOf(name, args[0])
		if err != nil {
			return nil, err
		}
		return ctor(p), nil
	}
}

func manyPipelines(name string, ctor func(...pipeline.Pipeline) pipeline.Modifier) Builder {
	return func(args []pipeline.Argument) (pipeline.Modifier, error) {
		if len(args) == 0 {
			return nil, &BuildError{Name: name, Message: "expected at least 1 pipeline"}
		}
		ps, err := pipelinesOf(name, args)
		if err != nil {
			return nil, err
		}
		return ctor(ps...), nil
	}
}

func oneFunc(name string, ctor func(pipeline.Func) pipeline.Modifier) Builder {
	return func(args []pipeline.Argument) (pipeline.Modifier, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		fn, err := funcOf(name, args[0])
		if err != nil {
			return nil, err
		}
		return ctor(fn), nil
	}
}

func (r *Registry) registerBuiltins() {
	builtins := map[string]Builder{
		// math
		"add":   oneArg("add", Add),
		"sub":   oneArg("sub", Sub),
		"mul":   oneArg("mul", Mul),
		"div":   oneArg("div", Div),
		"mod":   oneArg("mod", Mod),
		"abs":   noArgs("abs", Abs),
		"ceil":  noArgs("ceil", Ceil),
		"floor": noArgs("floor", Floor),
		"round": noArgs("round", Round),
		"min":   oneArg("min", Min),
		"max":   oneArg("max", Max),
		"sqrt":  noArgs("sqrt", Sqrt),

		// string
		"trim":        noArgs("trim", Trim),
		"toLowerCase": noArgs("toLowerCase", ToLowerCase),
		"toUpperCase": noArgs("toUpperCase", ToUpperCase),
		"capitalize":  noArgs("capitalize", Capitalize),
		"toTitleCase": noArgs("toTitleCase", ToTitleCase),
		"slugify":     noArgs("slugify", Slugify),
		"append":      oneArg("append", Append),
		"prepend":     oneArg("prepend", Prepend),
		"split":       oneArg("split", Split),
		"join":        oneArg("join", Join),
		"regexReplace": func(args []pipeline.Argument) (pipeline.Modifier, error) {
			if err := arity("regexReplace", args, 2, 2); err != nil {
				return nil, err
			}
			return RegexReplace(args[0], args[1])
		},
		"padStart": padBuilder("padStart", PadStart),
		"padEnd":   padBuilder("padEnd", PadEnd),
		"randomDigits": oneArg("randomDigits", func(n pipeline.Argument) pipeline.Modifier {
			return RandomDigits(n, r.rand)
		}),
		"uuid":   noArgs("uuid", func() pipeline.Modifier { return UUID(r.ids) }),
		"uuidV7": noArgs("uuidV7", func() pipeline.Modifier { return UUIDv7(r.idsV7) }),

		// string validation
		"isEmail":          noArgs("isEmail", IsEmail),
		"isAlphabetic":     noArgs("isAlphabetic", IsAlphabetic),
		"isAlphanumeric":   noArgs("isAlphanumeric", IsAlphanumeric),
		"isNumeric":        noArgs("isNumeric", IsNumeric),
		"isHexColor":       noArgs("isHexColor", IsHexColor),
		"isUUID":           noArgs("isUUID", IsUUID),
		"isSecurePassword": noArgs("isSecurePassword", IsSecurePassword),
		"regexMatch": func(args []pipeline.Argument) (pipeline.Modifier, error) {
			if err := arity("regexMatch", args, 1, 1); err != nil {
				return nil, err
			}
			return RegexMatch(args[0])
		},
		"hasPrefix":  oneArg("hasPrefix", HasPrefix),
		"hasSuffix":  oneArg("hasSuffix", HasSuffix),
		"isPrefixOf": oneArg("isPrefixOf", IsPrefixOf),
		"isSuffixOf": oneArg("isSuffixOf", IsSuffixOf),

		// length / array
		"length":    oneArg("length", Length),
		"minLength": oneArg("minLength", MinLength),
		"maxLength": oneArg("maxLength", MaxLength),
		"lengthBetween": func(args []pipeline.Argument) (pipeline.Modifier, error) {
			if err := arity("lengthBetween", args, 2, 2); err != nil {
				return nil, err
			}
			return LengthBetween(args[0], args[1]), nil
		},
		"truncate":  oneArg("truncate", Truncate),
		"getLength": noArgs("getLength", GetLength),
		"reverse":   noArgs("reverse", Reverse),
		"push":      oneArg("push", Push),
		"unshift":   oneArg("unshift", Unshift),
		"isEmpty":   noArgs("isEmpty", IsEmpty),
		"all":       onePipeline("all", All),
		"any":       onePipeline("any", Any),

		// comparison
		"eq":        oneArg("eq", Eq),
		"neq":       oneArg("neq", Neq),
		"gt":        oneArg("gt", Gt),
		"gte":       oneArg("gte", Gte),
		"lt":        oneArg("lt", Lt),
		"lte":       oneArg("lte", Lte),
		"oneOf":     oneArg("oneOf", OneOf),
		"isNull":    noArgs("isNull", IsNull),
		"isNotNull": noArgs("isNotNull", IsNotNull),
		"isTrue":    noArgs("isTrue", IsTrue),
		"isFalse":   noArgs("isFalse", IsFalse),

		// logical / control flow
		"and":      manyPipelines("and", And),
		"or":       manyPipelines("or", Or),
		"not":      onePipeline("not", Not),
		"if":       onePipeline("if", If),
		"then":     onePipeline("then", Then),
		"else":     onePipeline("else", Else),
		"do":       onePipeline("do", Do),
		"invalid":  noArgs("invalid", Invalid),
		"valid":    noArgs("valid", Valid),
		"fallback": oneArg("fallback", Fallback),
		"default":  oneArg("default", Default),
		"when": func(args []pipeline.Argument) (pipeline.Modifier, error) {
			if err := arity("when", args, 2, 2); err != nil {
				return nil, err
			}
			actions, err := actionsOf("when", args[0])
			if err != nil {
				return nil, err
			}
			p, err := pipelineOf("when", args[1])
			if err != nil {
				return nil, err
			}
			return When(actions, p), nil
		},

		// datetime
		"now":      noArgs("now", func() pipeline.Modifier { return Now(r.clock) }),
		"isBefore": oneArg("isBefore", IsBefore),
		"isAfter":  oneArg("isAfter", IsAfter),

		// record-aware
		"self":        keyArg("self", Self),
		"objectValue": keyArg("objectValue", ObjectValue),
		"previous":    keyArg("previous", Previous),
		"isNew":       noArgs("isNew", IsNew),
		"isModified":  keyArg("isModified", IsModified),
		"identity":    keyArg("identity", Identity),
		"isSelf":      noArgs("isSelf", IsSelf),
		"unique": func(args []pipeline.Argument) (pipeline.Modifier, error) {
			if err := arity("unique", args, 0, 1); err != nil {
				return nil, err
			}
			if len(args) == 0 {
				return Unique(""), nil
			}
			field, err := literalString("unique", args[0])
			if err != nil {
				return nil, err
			}
			return Unique(field), nil
		},

		// credential
		"bcryptSalt":   noArgs("bcryptSalt", func() pipeline.Modifier { return BcryptSalt(r.bcryptCost) }),
		"bcryptVerify": oneArg("bcryptVerify", BcryptVerify),

		// host functions
		"transform": oneFunc("transform", Transform),
		"validate":  oneFunc("validate", Validate),
		"callback":  oneFunc("callback", Callback),
		"print": func(args []pipeline.Argument) (pipeline.Modifier, error) {
			if err := arity("print", args, 0, 1); err != nil {
				return nil, err
			}
			label := ""
			if len(args) == 1 {
				s, err := literalString("print", args[0])
				if err != nil {
					return nil, err
				}
				label = s
			}
			return Print(label, r.logger), nil
		},
	}

	for name, b := range builtins {
		r.builders[name] = b
	}
}

func padBuilder(name string, ctor func(width, char pipeline.Argument) pipeline.Modifier) Builder {
	return func(args []pipeline.Argument) (pipeline.Modifier, error) {
		if err := arity(name, args, 1, 2); err != nil {
			return nil, err
		}
		char := pipeline.Lit(value.String(" "))
		if len(args) == 2 {
			char = args[1]
		}
		return ctor(args[0], char), nil
	}
}
