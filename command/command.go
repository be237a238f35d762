// Package command implements the per-connection command grammar and
// handler (C4): decoding a line of input into a GET or SET command,
// validating the cell identifier, and executing it against a cell store.
package command

import (
	"fmt"
	"strings"

	"sheetsrv/cellid"
	"sheetsrv/cellstore"
	"sheetsrv/cellvalue"
	"sheetsrv/env"
	"sheetsrv/formula"
)

// Command is either a Get or a Set, decoded from one line of client input.
type Command interface{ command() }

// Get reads a single cell's current value.
type Get struct {
	CellName string // exact display token as typed by the client, e.g. "a1"
}

// Set overwrites a cell's formula and its immediately evaluated value.
type Set struct {
	CellName string
	Formula  string
}

func (Get) command() {}
func (Set) command() {}

// Parse decodes one line of client input. The grammar is exactly two
// commands, case-insensitive on the verb: "get <cell_id>" and
// "set <cell_id> <formula>", where <formula> is everything remaining
// after the cell identifier, whitespace-trimmed.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	verb := strings.ToLower(fields[0])
	switch verb {
	case "get":
		if len(fields) != 2 {
			return nil, fmt.Errorf("get requires exactly one argument, got %d", len(fields)-1)
		}
		return Get{CellName: fields[1]}, nil
	case "set":
		if len(fields) < 3 {
			return nil, fmt.Errorf("set requires a cell and a formula")
		}
		rest := strings.TrimSpace(line)
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
		return Set{CellName: fields[1], Formula: rest}, nil
	default:
		return nil, fmt.Errorf("unrecognized command %q", fields[0])
	}
}

// Reply is the sum type of responses C4 can emit back to a connection. A
// Set that succeeds produces no Reply at all (see Handle).
type Reply struct {
	IsValue bool
	Name    string
	Value   cellvalue.Value
	Message string
}

// ValueReply constructs a successful GET reply.
func ValueReply(name string, value cellvalue.Value) Reply {
	return Reply{IsValue: true, Name: name, Value: value}
}

// ErrorReply constructs an error reply.
func ErrorReply(message string) Reply {
	return Reply{Message: message}
}

func (r Reply) IsError() bool { return !r.IsValue }

// Handle executes cmd against store and returns the reply to send, or
// false if no reply should be sent (a successful SET).
func Handle(store *cellstore.Store, cmd Command) (Reply, bool) {
	switch c := cmd.(type) {
	case Get:
		return handleGet(store, c)
	case Set:
		return handleSet(store, c)
	default:
		return ErrorReply(fmt.Sprintf("unhandled command %T", cmd)), true
	}
}

func handleGet(store *cellstore.Store, c Get) (Reply, bool) {
	id, name, ok := resolve(c.CellName)
	if !ok {
		return ErrorReply("Invalid Key Provided"), true
	}
	value := store.Get(id)
	if value.IsError() && value.Text == "Cell depends on an error" {
		return ErrorReply(value.Text), true
	}
	return ValueReply(name, value), true
}

func handleSet(store *cellstore.Store, c Set) (Reply, bool) {
	id, _, ok := resolve(c.CellName)
	if !ok {
		return ErrorReply("Invalid Key Provided"), true
	}

	names := formula.FreeVariables(c.Formula)
	environment, _ := env.Build(store.Snapshot(), names)

	value, err := formula.Eval(c.Formula, environment)
	if err != nil {
		if err == formula.ErrDependsOnError {
			value = cellvalue.Error("Cell depends on an error")
		} else {
			return ErrorReply(err.Error()), true
		}
	}

	store.Set(id, c.Formula, true, value)
	return Reply{}, false
}

// resolve validates the client-typed cell token and returns the parsed
// identifier plus its canonical display name.
func resolve(token string) (cellid.CellIdentifier, string, bool) {
	if !cellid.IsValidKey(token) {
		return cellid.CellIdentifier{}, "", false
	}
	id, err := cellid.ParseScalar(token)
	if err != nil {
		return cellid.CellIdentifier{}, "", false
	}
	return id, cellid.DisplayName(id), true
}
