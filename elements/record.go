package elements

type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from field name to value. The field order is
// the order in which the fields were first set.
type Record struct {
	fields []Field
	index  map[string]int
}

func NewRecord(fields ...Field) Record {
	rec := Record{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if idx, ok := rec.index[f.Name]; ok {
			rec.fields[idx].Value = f.Value
			continue
		}
		rec.index[f.Name] = len(rec.fields)
		rec.fields = append(rec.fields, f)
	}
	return rec
}

// With returns a copy of the record with the field set. Setting an existing
// field keeps its first position.
func (obj Record) With(name string, value Value) Record {
	fields := make([]Field, len(obj.fields), len(obj.fields)+1)
	copy(fields, obj.fields)
	index := make(map[string]int, len(obj.index)+1)
	for k, v := range obj.index {
		index[k] = v
	}

	if idx, ok := index[name]; ok {
		fields[idx].Value = value
	} else {
		index[name] = len(fields)
		fields = append(fields, Field{Name: name, Value: value})
	}
	return Record{fields: fields, index: index}
}

func (obj Record) Get(name string) (Value, bool) {
	idx, ok := obj.index[name]
	if !ok {
		return NullValue(), false
	}
	return obj.fields[idx].Value, true
}

// Lookup returns the value of the field, treating absent fields as null.
func (obj Record) Lookup(name string) Value {
	val, _ := obj.Get(name)
	return val
}

func (obj Record) Len() int {
	return len(obj.fields)
}

func (obj Record) Fields() []Field {
	fields := make([]Field, len(obj.fields))
	copy(fields, obj.fields)
	return fields
}

func (obj Record) Keys() []string {
	keys := make([]string, len(obj.fields))
	for i, f := range obj.fields {
		keys[i] = f.Name
	}
	return keys
}

////////////////////////////////////////

// RecordSet is an ordered, read-only sequence of records. It is built once
// and then shared between stages without copying.
type RecordSet struct {
	records []Record
}

func NewRecordSet(records ...Record) RecordSet {
	owned := make([]Record, len(records))
	copy(owned, records)
	return RecordSet{records: owned}
}

func (obj RecordSet) Len() int {
	return len(obj.records)
}

func (obj RecordSet) At(idx int) Record {
	return obj.records[idx]
}

func (obj RecordSet) Records() []Record {
	records := make([]Record, len(obj.records))
	copy(records, obj.records)
	return records
}

// Columns returns the union of field names across all records in the
// order each name was first seen.
func (obj RecordSet) Columns() []string {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, rec := range obj.records {
		for _, f := range rec.fields {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			columns = append(columns, f.Name)
		}
	}
	return columns
}
