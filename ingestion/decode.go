package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/alekLukanen/errs"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

/*
* Decode a JSON array of objects into a record set. The field order of every
* object is kept. Nested objects and arrays are kept as their compact JSON
* text since records only hold scalars.
 */
func DecodeRecords(r io.Reader) (elements.RecordSet, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return elements.RecordSet{}, err
	}

	records := make([]elements.Record, 0)
	for dec.More() {
		rec, err := decodeObject(dec)
		if err != nil {
			return elements.RecordSet{}, errs.Wrap(err, fmt.Errorf("record index: %d", len(records)))
		}
		records = append(records, rec)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return elements.RecordSet{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return elements.RecordSet{}, errs.Wrap(errs.NewStackError(fmt.Errorf("trailing data after array")), ErrInvalidPayload)
	}

	return elements.NewRecordSet(records...), nil
}

func expectDelim(dec *json.Decoder, delim json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return errs.Wrap(errs.NewStackError(fmt.Errorf("expected '%s': %v", delim, err)), ErrInvalidPayload)
	}
	if d, ok := tok.(json.Delim); !ok || d != delim {
		return errs.Wrap(errs.NewStackError(fmt.Errorf("expected '%s' but found %v", delim, tok)), ErrInvalidPayload)
	}
	return nil
}

func decodeObject(dec *json.Decoder) (elements.Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return elements.Record{}, err
	}

	fields := make([]elements.Field, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return elements.Record{}, errs.Wrap(errs.NewStackError(err), ErrInvalidPayload)
		}
		name, ok := tok.(string)
		if !ok {
			return elements.Record{}, errs.Wrap(errs.NewStackError(fmt.Errorf("object key %v is not a string", tok)), ErrInvalidPayload)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return elements.Record{}, errs.Wrap(err, fmt.Errorf("field: %s", name))
		}
		fields = append(fields, elements.Field{Name: name, Value: val})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return elements.Record{}, err
	}
	return elements.NewRecord(fields...), nil
}

func decodeValue(dec *json.Decoder) (elements.Value, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return elements.Value{}, errs.Wrap(errs.NewStackError(err), ErrInvalidPayload)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return elements.Value{}, errs.Wrap(errs.NewStackError(fmt.Errorf("empty value")), ErrInvalidPayload)
	}

	switch raw[0] {
	case 'n':
		return elements.NullValue(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return elements.Value{}, errs.Wrap(errs.NewStackError(err), ErrInvalidPayload)
		}
		return elements.BoolValue(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return elements.Value{}, errs.Wrap(errs.NewStackError(err), ErrInvalidPayload)
		}
		return elements.StringValue(s), nil
	case '{', '[':
		buf := new(bytes.Buffer)
		if err := json.Compact(buf, raw); err != nil {
			return elements.Value{}, errs.Wrap(errs.NewStackError(err), ErrInvalidPayload)
		}
		return elements.StringValue(buf.String()), nil
	default:
		num, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return elements.Value{}, errs.Wrap(errs.NewStackError(err), ErrInvalidPayload)
		}
		return elements.NumberValue(num), nil
	}
}
