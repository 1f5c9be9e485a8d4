package typesystem

import "fmt"

// RowField is one label/type cell linearised out of a row spine.
type RowField struct {
	Label string
	Field Type
}

// RowToList linearises a row spine into its fields (in spine order,
// head first) and an optional open tail variable. A row whose spine
// terminates in TRowEmpty has a nil tail.
func RowToList(row Type) ([]RowField, *TyVar) {
	var fields []RowField
	cur := row
	for {
		switch r := cur.(type) {
		case TRowExtend:
			fields = append(fields, RowField{Label: r.Label, Field: r.Field})
			cur = r.Rest
		case TRowEmpty:
			return fields, nil
		case TVar:
			v := r.Var
			return fields, &v
		default:
			return fields, nil
		}
	}
}

// MkRowType builds a canonical right-nested row spine from a tail
// (TRowEmpty{} or a TVar of Row kind) and a list of fields, applied in
// the order given — the first field given becomes the outermost
// TRowExtend. Field order here is never sorted: rows are ordered-by-
// construction, and pretty-printing may sort separately for legibility.
func MkRowType(tail Type, fields []RowField) Type {
	row := tail
	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		row = TRowExtend{P: f.Field.Pos(), Label: f.Label, Field: f.Field, Rest: row}
	}
	return row
}

// RowToMap linearises row into a label->type map, rejecting duplicate
// labels. The optional tail variable is discarded — callers that need
// it should use RowToList directly.
func RowToMap(row Type) (map[string]Type, error) {
	fields, _ := RowToList(row)
	out := make(map[string]Type, len(fields))
	for _, f := range fields {
		if _, dup := out[f.Label]; dup {
			return nil, fmt.Errorf("repeated label %q in row", f.Label)
		}
		out[f.Label] = f.Field
	}
	return out, nil
}
