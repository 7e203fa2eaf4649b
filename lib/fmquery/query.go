// Package fmquery builds query strings for FileMaker Server's XML
// Custom Web Publishing interface.
//
// Reference: https://help.claris.com/en/server-custom-web-publishing-guide.pdf
package fmquery

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
)

// commandDesc describes the parameter grammar of a single query command.
type commandDesc struct {
	required   map[string]bool
	optional   map[string]bool
	fieldNames bool
}

func paramSet(groups ...[]string) map[string]bool {
	out := map[string]bool{}
	for _, group := range groups {
		for _, name := range group {
			out[name] = true
		}
	}
	return out
}

var (
	paramsDbLay  = []string{"-db", "-lay"}
	paramsLayr   = []string{"-lay.response"}
	paramsScript = []string{
		"-script",
		"-script.param",
		"-script.prefind",
		"-script.prefind.param",
		"-script.presort",
		"-script.presort.param",
	}
	paramsFind = []string{"-recid", "-lop", "-op", "-max", "-skip", "-sortorder", "-sortfield"}
	paramsFQ   = []string{"-query", "-max", "-skip", "-sortorder", "-sortfield"}
)

var commands = map[string]commandDesc{
	"-dbnames": {},
	"-delete": {
		required: paramSet(paramsDbLay, []string{"-recid"}),
		optional: paramSet(paramsScript),
	},
	"-edit": {
		required:   paramSet(paramsDbLay, []string{"-recid"}),
		optional:   paramSet(paramsScript, []string{"-modid"}),
		fieldNames: true,
	},
	"-find": {
		required:   paramSet(paramsDbLay),
		optional:   paramSet(paramsLayr, paramsScript, paramsFind),
		fieldNames: true,
	},
	"-findany": {
		required: paramSet(paramsDbLay),
		optional: paramSet(paramsLayr, paramsScript),
	},
	"-findall": {
		required: paramSet(paramsDbLay),
		optional: paramSet(paramsLayr, paramsScript, paramsFind),
	},
	"-findquery": {
		required:   paramSet(paramsDbLay, []string{"-query"}),
		optional:   paramSet(paramsLayr, paramsScript, paramsFQ),
		fieldNames: true,
	},
	"-layoutnames": {
		required: paramSet([]string{"-db"}),
	},
	"-new": {
		required:   paramSet(paramsDbLay),
		optional:   paramSet(paramsScript),
		fieldNames: true,
	},
	"-view": {
		required: paramSet(paramsDbLay),
	},
}

// Param is a single name/value pair on a query.
type Param struct {
	Name  string
	Value string
}

// Query is a single CWP request: exactly one command plus its parameters.
// Dash-params (-db, -lay, -max, ...) and layout field params are kept apart
// because only some commands accept field names.
type Query struct {
	Command string

	params      []Param
	fieldParams []Param
}

func New(command string) *Query {
	return &Query{Command: command}
}

// SetParam sets a dash-parameter, replacing any previous value. Parameter
// names are case-insensitive on the FileMaker side so they are lowercased.
func (q *Query) SetParam(name string, value any) *Query {
	name = strings.ToLower(name)
	for i, p := range q.params {
		if p.Name == name {
			q.params[i].Value = fmt.Sprint(value)
			return q
		}
	}
	q.params = append(q.params, Param{Name: name, Value: fmt.Sprint(value)})
	return q
}

// SetFieldParam sets a layout field parameter (e.g. a field value for -new,
// or a "<field>.op" find modifier).
func (q *Query) SetFieldParam(name string, value any) *Query {
	name = strings.ToLower(name)
	for i, p := range q.fieldParams {
		if p.Name == name {
			q.fieldParams[i].Value = fmt.Sprint(value)
			return q
		}
	}
	q.fieldParams = append(q.fieldParams, Param{Name: name, Value: fmt.Sprint(value)})
	return q
}

func (q *Query) Param(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, p := range q.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func (q *Query) FieldParam(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, p := range q.fieldParams {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Params returns a copy of the dash-parameters, in insertion order.
func (q *Query) Params() []Param {
	return append([]Param(nil), q.params...)
}

// FieldParams returns a copy of the field parameters, in insertion order.
func (q *Query) FieldParams() []Param {
	return append([]Param(nil), q.fieldParams...)
}

// matchesDesc reports whether a param name is covered by a grammar set,
// accounting for the ".N" precedence suffixes of -sortfield/-sortorder
// and the "-qN"/"-qN.value" params of -findquery.
func matchesDesc(set map[string]bool, name string) bool {
	if set[name] {
		return true
	}
	if base, _, found := strings.Cut(name, "."); found && (set[base]) {
		return true
	}
	if strings.HasPrefix(name, "-q") {
		return set["-query"]
	}
	return false
}

// Encode validates the query against its command's grammar and renders the
// "<command>&<params>" query-string. Missing required params are an error;
// unknown params only log a warning, matching how loose the protocol is in
// practice.
func (q *Query) Encode() (string, error) {
	desc, ok := commands[q.Command]
	if !ok {
		return "", fmt.Errorf("unknown query command %q", q.Command)
	}

	var missing []string
	for name := range desc.required {
		if _, ok := q.Param(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", MissingParamError{Command: q.Command, Params: missing}
	}

	for _, p := range q.params {
		if !desc.required[p.Name] && !matchesDesc(desc.optional, p.Name) {
			slog.Warn("unused query parameter", "command", q.Command, "param", p.Name)
		}
	}
	if len(q.fieldParams) > 0 && !desc.fieldNames {
		slog.Warn("command does not take field names as arguments", "command", q.Command)
	}

	values := url.Values{}
	for _, p := range q.params {
		values.Set(p.Name, p.Value)
	}
	for _, p := range q.fieldParams {
		values.Set(p.Name, p.Value)
	}

	return q.Command + "&" + values.Encode(), nil
}

// MissingParamError reports required command parameters that were not set.
type MissingParamError struct {
	Command string
	Params  []string
}

func (e MissingParamError) Error() string {
	return fmt.Sprintf(
		"command %s is missing required parameters: %s",
		e.Command, strings.Join(e.Params, ", "),
	)
}
