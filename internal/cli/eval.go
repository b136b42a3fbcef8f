package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/schema"
	"github.com/roach88/strata/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database string
	Model    string
	Action   string
	ID       string
	Input    string
	Identity string
	Trusted  bool
	Select   []string
}

// EvalResult is the JSON payload of a successful eval.
type EvalResult struct {
	Model  string          `json:"model"`
	Action string          `json:"action"`
	ID     string          `json:"id,omitempty"`
	Record json.RawMessage `json:"record,omitempty"`
}

var evalActions = map[string]pipeline.Action{
	"create": pipeline.ActionCreate,
	"update": pipeline.ActionUpdate,
	"upsert": pipeline.ActionUpsert,
	"delete": pipeline.ActionDelete,
	"find":   pipeline.ActionFind,
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <schema>",
		Short: "Run one record action through the schema's pipelines",
		Long: `Run one record action through the field pipelines of a model and
print the resulting record output.

Input is a JSON object, given inline or as @file. Without --db the record
lives in a throwaway in-memory store.

Exit codes:
  0 - Action succeeded
  1 - Action rejected (validation, unallowed keys, type mismatch, ...)
  2 - Command error (schema not found, bad input, database error)

Examples:
  strata eval ./schema --model User --input '{"email": "ada@example.com"}'
  strata eval ./schema --db app.db --model User --action update --id u1 --input @patch.json
  strata eval ./schema --db app.db --model User --action find --id u1 --select id,email
  strata eval ./schema --db app.db --model Post --identity User:u1 --input '{"title": "Hello"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: in-memory)")
	cmd.Flags().StringVar(&opts.Model, "model", "", "model name (required)")
	cmd.Flags().StringVar(&opts.Action, "action", "create", "create|update|upsert|delete|find")
	cmd.Flags().StringVar(&opts.ID, "id", "", "primary key of an existing record")
	cmd.Flags().StringVar(&opts.Input, "input", "{}", "input JSON object or @file")
	cmd.Flags().StringVar(&opts.Identity, "identity", "", "acting identity as Model:id")
	cmd.Flags().BoolVar(&opts.Trusted, "trusted", false, "write input without running on-set pipelines")
	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "output keys to include")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runEval(opts *EvalOptions, schemaPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	action, ok := evalActions[opts.Action]
	if !ok {
		return commandError(formatter, ErrCodeBadInput, fmt.Sprintf("unknown action %q", opts.Action))
	}
	if action != pipeline.ActionCreate && opts.ID == "" {
		return commandError(formatter, ErrCodeBadInput, fmt.Sprintf("--id is required for %s", opts.Action))
	}
	input, err := readInput(opts.Input)
	if err != nil {
		return commandError(formatter, ErrCodeBadInput, err.Error())
	}
	identityModel, identityID, err := parseIdentity(opts.Identity)
	if err != nil {
		return commandError(formatter, ErrCodeBadInput, err.Error())
	}

	result, loadErrs := loadSchema(schemaPath, newRegistry(), schema.LoadModeFailFast)
	if len(loadErrs) > 0 {
		return commandError(formatter, loadErrs[0].Code, loadErrs[0].Message)
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = ":memory:"
	}
	slog.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return commandError(formatter, ErrCodeStorage, err.Error())
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var o *object.Object
	sess := object.NewSession(result.Graph, st, object.WithAction(action))
	err = sess.Transaction(ctx, func(tx *object.Session) error {
		var objOpts []object.Option
		if identityModel != "" {
			who, err := tx.Find(ctx, identityModel, identityID)
			if err != nil {
				return err
			}
			objOpts = append(objOpts, object.WithIdentity(who.Record()))
		}
		var err error
		o, err = evalAction(ctx, tx, action, opts, input, objOpts)
		return err
	})
	if err != nil {
		return actionError(formatter, err)
	}

	out := EvalResult{Model: opts.Model, Action: opts.Action, ID: pipeline.IDString(o.ID())}
	if action != pipeline.ActionDelete {
		if len(opts.Select) > 0 {
			if err := o.Select(opts.Select...); err != nil {
				return actionError(formatter, err)
			}
		}
		data, err := o.ToJSON(ctx)
		if err != nil {
			return actionError(formatter, err)
		}
		out.Record = data
	}
	slog.Debug("eval completed", "model", out.Model, "action", out.Action, "id", out.ID)

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	if out.Record == nil {
		fmt.Fprintf(formatter.Writer, "✓ %s %s deleted\n", out.Model, out.ID)
		return nil
	}
	fmt.Fprintln(formatter.Writer, string(out.Record))
	return nil
}

func evalAction(ctx context.Context, sess *object.Session, action pipeline.Action, opts *EvalOptions, input []byte, objOpts []object.Option) (*object.Object, error) {
	var (
		o   *object.Object
		err error
	)
	switch action {
	case pipeline.ActionCreate:
		o, err = sess.New(opts.Model, objOpts...)
	case pipeline.ActionUpsert:
		o, err = sess.Find(ctx, opts.Model, opts.ID, objOpts...)
		if object.IsNotFound(err) {
			o, err = sess.New(opts.Model, objOpts...)
		}
	default:
		o, err = sess.Find(ctx, opts.Model, opts.ID, objOpts...)
	}
	if err != nil {
		return nil, err
	}

	switch action {
	case pipeline.ActionDelete:
		return o, o.Delete(ctx)
	case pipeline.ActionFind:
		return o, nil
	}

	if opts.Trusted {
		err = o.UpdateJSON(input)
	} else {
		err = o.SetJSON(ctx, input)
	}
	if err != nil {
		return nil, err
	}
	return o, o.Save(ctx)
}

// readInput returns the raw input JSON. "@path" reads a file and "-" reads
// stdin.
func readInput(s string) ([]byte, error) {
	switch {
	case s == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case strings.HasPrefix(s, "@"):
		data, err := os.ReadFile(s[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return data, nil
	}
	return []byte(s), nil
}

func parseIdentity(s string) (model, id string, err error) {
	if s == "" {
		return "", "", nil
	}
	model, id, ok := strings.Cut(s, ":")
	if !ok || model == "" || id == "" {
		return "", "", fmt.Errorf("identity must be Model:id, got %q", s)
	}
	return model, id, nil
}

func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// actionError reports a rejected action. Storage failures are command
// errors; every other ActionError is a rejection.
func actionError(formatter *OutputFormatter, err error) error {
	var ae *object.ActionError
	if !errors.As(err, &ae) {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}
	if ae.Kind == object.KindStorage {
		return commandError(formatter, ErrCodeStorage, ae.Error())
	}

	details := map[string]any{"model": ae.Model}
	if len(ae.Path) > 0 {
		details["path"] = ae.Path
	}
	if len(ae.Keys) > 0 {
		details["keys"] = ae.Keys
	}
	_ = formatter.Error(string(ae.Kind), ae.Message, details)
	return WrapExitError(ExitFailure, "action rejected", err)
}
