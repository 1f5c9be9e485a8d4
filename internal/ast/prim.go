package ast

// PrimTag identifies one member of the closed, finite primitive set.
// Every primitive has a known type, built in internal/infer's primitive
// table (tiPrim); the parser never introduces new primitives, only new
// combinations of App over this fixed vocabulary.
type PrimTag int

const (
	// Arithmetic
	PAdd PrimTag = iota
	PSub
	PMul
	PDiv
	PNeg
	PMod
	PAbs
	PFloor
	PCeiling
	PDouble

	// Relational
	PEq
	PNEq
	PRGT
	PRGTE
	PRLT
	PRLTE

	// Logical
	PAnd
	POr
	PNot

	// Conditional
	PCond

	// List
	PListEmpty
	PListCons
	PListUncons
	PListAppend
	PListFoldr
	PListNull

	// Text
	PTextAppend
	PPack
	PUnpack
	PShow

	// Record (label carried on the Prim value, not the tag)
	PRecordEmpty
	PRecordSelect
	PRecordExtend
	PRecordRestrict

	// Variant
	PVariantInject
	PVariantEmbed
	PVariantElim
	PAbsurd

	// Composition
	PFwdComp
	PBwdComp

	// Fixed-point
	PFix

	// Diagnostic
	PError
	PTrace

	// Literal injectors
	PInt
	PDbl
	PChar
	PBool
	PText
)

var primNames = map[PrimTag]string{
	PAdd: "Add", PSub: "Sub", PMul: "Mul", PDiv: "Div", PNeg: "Neg", PMod: "Mod",
	PAbs: "Abs", PFloor: "Floor", PCeiling: "Ceiling", PDouble: "Double",
	PEq: "Eq", PNEq: "NEq", PRGT: "RGT", PRGTE: "RGTE", PRLT: "RLT", PRLTE: "RLTE",
	PAnd: "And", POr: "Or", PNot: "Not", PCond: "Cond",
	PListEmpty: "ListEmpty", PListCons: "ListCons", PListUncons: "ListUncons",
	PListAppend: "ListAppend", PListFoldr: "ListFoldr", PListNull: "ListNull",
	PTextAppend: "TextAppend", PPack: "Pack", PUnpack: "Unpack", PShow: "Show",
	PRecordEmpty: "RecordEmpty", PRecordSelect: "RecordSelect",
	PRecordExtend: "RecordExtend", PRecordRestrict: "RecordRestrict",
	PVariantInject: "VariantInject", PVariantEmbed: "VariantEmbed",
	PVariantElim: "VariantElim", PAbsurd: "Absurd",
	PFwdComp: "FwdComp", PBwdComp: "BwdComp", PFix: "Fix",
	PError: "Error", PTrace: "Trace",
	PInt: "Int", PDbl: "Dbl", PChar: "Char", PBool: "Bool", PText: "Text",
}

func (t PrimTag) String() string {
	if s, ok := primNames[t]; ok {
		return s
	}
	return "?Prim"
}

// Prim is one concrete primitive value: a tag plus whatever payload that
// tag needs (a row label, or a literal's value).
type Prim struct {
	Tag   PrimTag
	Label string // for RecordSelect/Extend/Restrict, VariantInject/Embed/Elim

	IntVal  int64
	DblVal  float64
	CharVal rune
	BoolVal bool
	TextVal string
}
