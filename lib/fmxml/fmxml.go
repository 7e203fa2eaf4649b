// Package fmxml parses fmresultset XML documents produced by FileMaker
// Server's Custom Web Publishing interface.
package fmxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lariat/lib/fmerror"
)

// Field is a single named value on a record. FileMaker field names are
// case-insensitive, so names are lowercased during parsing.
type Field struct {
	Name  string
	Value string
}

// RelatedSet is the portal/related-records table embedded in a record.
type RelatedSet struct {
	Table   string
	Records []Record
}

type Record struct {
	ID          int
	ModID       int
	Fields      []Field
	RelatedSets []RelatedSet
}

// Field returns the value of the named field, or def if the record has no
// such field. The lookup is linear, which is fine for the handful of fields
// a layout usually exposes.
func (r Record) Field(name string, def string) string {
	name = strings.ToLower(name)
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return def
}

func (r Record) RelatedSet(table string) ([]Record, bool) {
	table = strings.ToLower(table)
	for _, rs := range r.RelatedSets {
		if rs.Table == table {
			return rs.Records, true
		}
	}
	return nil, false
}

// FieldDefinition is a layout field description from the <metadata> node.
type FieldDefinition struct {
	Name      string
	MaxRepeat int
	NotEmpty  bool
	// one of: "text", "number", "date", "time", "timestamp", "container"
	Result string
	// one of: "normal", "calculation", "summary"
	Type string
}

type Metadata struct {
	Fields      map[string]FieldDefinition
	RelatedSets map[string]map[string]FieldDefinition
}

// ParseError reports malformed fmresultset XML.
type ParseError struct {
	Message string
	Err     error
}

func (e ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fmresultset: %s: %s", e.Message, e.Err)
	}
	return "fmresultset: " + e.Message
}

func (e ParseError) Unwrap() error { return e.Err }

// Parse streams an fmresultset document into records and layout metadata.
// A nonzero <error code="..."/> aborts parsing with a fmerror.Error.
func Parse(r io.Reader) ([]Record, *Metadata, error) {
	dec := xml.NewDecoder(r)

	var records []Record
	var metadata *Metadata

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, ParseError{Message: "malformed xml", Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		// Ordered by how common the nodes are in a response.
		switch start.Name.Local {
		case "record":
			record, err := parseRecord(dec, start)
			if err != nil {
				return nil, nil, err
			}
			records = append(records, record)
		case "metadata":
			metadata = &Metadata{
				Fields:      map[string]FieldDefinition{},
				RelatedSets: map[string]map[string]FieldDefinition{},
			}
			if err := parseMetadata(dec, metadata); err != nil {
				return nil, nil, err
			}
		case "error":
			code := attr(start, "code")
			if code != "" && code != "0" {
				n, err := strconv.Atoi(code)
				if err != nil {
					return nil, nil, ParseError{Message: "non-numeric error code " + code}
				}
				return nil, nil, fmerror.Error{Code: n}
			}
			if err := dec.Skip(); err != nil {
				return nil, nil, ParseError{Message: "malformed error node", Err: err}
			}
		}
	}

	return records, metadata, nil
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func parseRecord(dec *xml.Decoder, start xml.StartElement) (Record, error) {
	record := Record{
		ID:    atoiOrZero(attr(start, "record-id")),
		ModID: atoiOrZero(attr(start, "mod-id")),
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return record, ParseError{Message: "malformed record node", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "field":
				name := strings.ToLower(attr(t, "name"))
				value, err := parseFieldData(dec)
				if err != nil {
					return record, err
				}
				record.Fields = append(record.Fields, Field{Name: name, Value: value})
			case "relatedset":
				table := strings.ToLower(attr(t, "table"))
				related, err := parseRelatedSet(dec)
				if err != nil {
					return record, err
				}
				record.RelatedSets = append(record.RelatedSets, RelatedSet{
					Table:   table,
					Records: related,
				})
			default:
				if err := dec.Skip(); err != nil {
					return record, ParseError{Message: "malformed record node", Err: err}
				}
			}
		case xml.EndElement:
			return record, nil
		}
	}
}

// parseFieldData consumes the children of a <field> node. A field should
// contain exactly one <data> node.
func parseFieldData(dec *xml.Decoder) (string, error) {
	var value string
	seen := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", ParseError{Message: "malformed field node", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "data" {
				return "", ParseError{Message: "unexpected tag " + t.Name.Local + " in field"}
			}
			seen++
			if seen > 1 {
				return "", ParseError{Message: "field contains more than one data node"}
			}
			var data struct {
				Text string `xml:",chardata"`
			}
			if err := dec.DecodeElement(&data, &t); err != nil {
				return "", ParseError{Message: "malformed data node", Err: err}
			}
			value = data.Text
		case xml.EndElement:
			return value, nil
		}
	}
}

func parseRelatedSet(dec *xml.Decoder) ([]Record, error) {
	var records []Record
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, ParseError{Message: "malformed relatedset node", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "record" {
				return nil, ParseError{Message: "unexpected tag " + t.Name.Local + " in relatedset"}
			}
			record, err := parseRecord(dec, t)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		case xml.EndElement:
			return records, nil
		}
	}
}

func parseMetadata(dec *xml.Decoder, out *Metadata) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return ParseError{Message: "malformed metadata node", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "field-definition":
				def := parseFieldDefinition(t)
				out.Fields[def.Name] = def
				if err := dec.Skip(); err != nil {
					return ParseError{Message: "malformed field-definition node", Err: err}
				}
			case "relatedset-definition":
				table := attr(t, "table")
				fields, err := parseRelatedSetDefinition(dec)
				if err != nil {
					return err
				}
				out.RelatedSets[table] = fields
			default:
				return ParseError{Message: "unexpected tag " + t.Name.Local + " in metadata"}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parseRelatedSetDefinition(dec *xml.Decoder) (map[string]FieldDefinition, error) {
	fields := map[string]FieldDefinition{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, ParseError{Message: "malformed relatedset-definition node", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "field-definition" {
				return nil, ParseError{Message: "unexpected tag " + t.Name.Local + " in relatedset-definition"}
			}
			def := parseFieldDefinition(t)
			fields[def.Name] = def
			if err := dec.Skip(); err != nil {
				return nil, ParseError{Message: "malformed field-definition node", Err: err}
			}
		case xml.EndElement:
			return fields, nil
		}
	}
}

func parseFieldDefinition(e xml.StartElement) FieldDefinition {
	return FieldDefinition{
		Name:      attr(e, "name"),
		MaxRepeat: atoiOrZero(attr(e, "max-repeat")),
		NotEmpty:  attr(e, "not-empty") == "yes",
		Result:    attr(e, "result"),
		Type:      attr(e, "type"),
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
