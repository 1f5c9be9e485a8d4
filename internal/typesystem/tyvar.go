package typesystem

import (
	"strconv"

	"github.com/5l1v3r1/Expresso/internal/config"
	"github.com/5l1v3r1/Expresso/internal/token"
)

// TyVar is a single type variable: a display prefix, a globally fresh
// id, a kind, a flavour and a constraint. Two TyVars denote the same
// variable iff their Id matches; Prefix is cosmetic.
type TyVar struct {
	Prefix     string
	Id         int
	VarKind    Kind
	Flavour    Flavour
	Constraint Constraint
	SrcPos     token.Position
}

func (v TyVar) String() string {
	if config.IsTestMode {
		// Normalize fresh ids for deterministic golden output, mirroring
		// the teacher's t?/k? normalization in test/LSP mode.
		return v.Prefix + "?"
	}
	return v.Prefix + strconv.Itoa(v.Id)
}

// VarSupply is a monotonically increasing counter. One supply is threaded
// through a whole front-end run: every file the import resolver parses
// draws from it, and the TIState that infers the result continues it, so
// ids never collide and numbering stays deterministic. It is not safe for
// concurrent use.
type VarSupply struct {
	next int
}

// Fresh allocates a brand new type variable.
func (s *VarSupply) Fresh(pos token.Position, prefix string, kind Kind) TyVar {
	s.next++
	return TyVar{Prefix: prefix, Id: s.next, VarKind: kind, Flavour: Inferred, Constraint: NoConstraint(), SrcPos: pos}
}

// FreshWith allocates a fresh variable with an explicit flavour and constraint.
func (s *VarSupply) FreshWith(pos token.Position, prefix string, kind Kind, flavour Flavour, c Constraint) TyVar {
	s.next++
	return TyVar{Prefix: prefix, Id: s.next, VarKind: kind, Flavour: flavour, Constraint: c, SrcPos: pos}
}
