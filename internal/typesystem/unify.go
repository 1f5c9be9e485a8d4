package typesystem

// MGU computes the most general unifier of t1 and t2, per the case
// order in spec.md §4.6. It allocates fresh variables (for row
// rewriting) from supply, but never reads or writes any ambient
// substitution — callers that need "unify against the current
// substitution and accumulate into it" (the inferencer's `unify`) apply
// the existing substitution to both sides before calling MGU and
// compose the result back in afterwards.
func MGU(t1, t2 Type, supply *VarSupply) (Subst, error) {
	v1, ok1 := t1.(TVar)
	v2, ok2 := t2.(TVar)
	switch {
	case ok1 && ok2:
		return unionConstraints(v1.Var, v2.Var, supply)
	case ok1:
		return varBind(v1.Var, t2, supply)
	case ok2:
		return varBind(v2.Var, t1, supply)
	}

	switch a := t1.(type) {
	case TFun:
		b, ok := t2.(TFun)
		if !ok {
			return nil, mismatchErr(t1, t2)
		}
		s1, err := MGU(a.Arg, b.Arg, supply)
		if err != nil {
			return nil, err
		}
		s2, err := MGU(Apply(s1, a.Result), Apply(s1, b.Result), supply)
		if err != nil {
			return nil, err
		}
		return Compose(s2, s1), nil

	case TGround:
		b, ok := t2.(TGround)
		if ok && a.Kind == b.Kind {
			return Subst{}, nil
		}
		return nil, mismatchErr(t1, t2)

	case TList:
		b, ok := t2.(TList)
		if !ok {
			return nil, mismatchErr(t1, t2)
		}
		return MGU(a.Elem, b.Elem, supply)

	case TRecord:
		b, ok := t2.(TRecord)
		if !ok {
			return nil, mismatchErr(t1, t2)
		}
		return MGU(a.Row, b.Row, supply)

	case TVariant:
		b, ok := t2.(TVariant)
		if !ok {
			return nil, mismatchErr(t1, t2)
		}
		return MGU(a.Row, b.Row, supply)

	case TRowEmpty:
		switch b := t2.(type) {
		case TRowEmpty:
			return Subst{}, nil
		case TRowExtend:
			_, _, _, err := rewriteRow(t1, b.Label, supply)
			return nil, err
		}
		return nil, mismatchErr(t1, t2)

	case TRowExtend:
		return unifyRowExtend(a, t2, supply)
	}

	return nil, mismatchErr(t1, t2)
}

func mismatchErr(t1, t2 Type) error {
	return &MismatchError{Pos1: t1.Pos(), Pos2: t2.Pos(), T1: t1, T2: t2}
}

// unifyRowExtend implements mgu case 8: unifying a non-empty row
// extension {label:field|rest} against another row (closed or open).
func unifyRowExtend(r1 TRowExtend, row2 Type, supply *VarSupply) (Subst, error) {
	field2, rest2, theta1, err := rewriteRow(row2, r1.Label, supply)
	if err != nil {
		return nil, err
	}

	if tailVar, ok := r1.Rest.(TVar); ok {
		if _, bound := theta1[tailVar.Var.Id]; bound {
			return nil, &RecursiveRowError{Var: tailVar.Var}
		}
	}

	sField, err := MGU(Apply(theta1, r1.Field), Apply(theta1, field2), supply)
	if err != nil {
		return nil, err
	}
	theta2 := Compose(sField, theta1)

	sRest, err := MGU(Apply(theta2, r1.Rest), Apply(theta2, rest2), supply)
	if err != nil {
		return nil, err
	}
	return Compose(sRest, theta2), nil
}

// rewriteRow finds label within row, returning the field type found,
// the row remaining once that field is plucked out, and a substitution
// θ under which row ≡ {label:field|rest}. row is always TRowEmpty or a
// TRowExtend chain here: a bare row variable is unified via varBindRow
// before MGU ever reaches this function.
func rewriteRow(row Type, label string, supply *VarSupply) (field Type, rest Type, theta Subst, err error) {
	switch r := row.(type) {
	case TRowEmpty:
		return nil, nil, nil, &EmptyRowInsertError{Label: label, Pos: r.P}

	case TRowExtend:
		if r.Label == label {
			return r.Field, r.Rest, Subst{}, nil
		}
		if tv, ok := r.Rest.(TVar); ok {
			if tv.Var.Constraint.LacksLabel(label) {
				return nil, nil, nil, &LacksViolationError{Var: tv.Var, Label: label}
			}
			beta := supply.FreshWith(r.P, "r", Row, Inferred, LacksConstraint(label))
			gamma := supply.Fresh(r.P, "a", Star)
			bound := Type(TRowExtend{P: r.P, Label: label, Field: TVar{Var: gamma}, Rest: TVar{Var: beta}})
			theta := Subst{tv.Var.Id: bound}
			newRest := TRowExtend{P: r.P, Label: r.Label, Field: r.Field, Rest: TVar{Var: beta}}
			return TVar{Var: gamma}, newRest, theta, nil
		}
		innerField, innerRest, innerTheta, err := rewriteRow(r.Rest, label, supply)
		if err != nil {
			return nil, nil, nil, err
		}
		newRest := TRowExtend{P: r.P, Label: r.Label, Field: Apply(innerTheta, r.Field), Rest: innerRest}
		return innerField, newRest, innerTheta, nil

	default:
		return nil, nil, nil, &EmptyRowInsertError{Label: label, Pos: row.Pos()}
	}
}

// varBind binds a single type variable u to type t.
func varBind(u TyVar, t Type, supply *VarSupply) (Subst, error) {
	if tv, ok := t.(TVar); ok && tv.Var.Id == u.Id {
		return Subst{}, nil
	}
	for _, fv := range Ftv(t) {
		if fv.Id == u.Id {
			return nil, &OccursError{Var: u, T: t}
		}
	}
	if u.VarKind == Star {
		return Subst{u.Id: t}, nil
	}
	return varBindRow(u, t, supply)
}

// varBindRow binds a Row-kinded variable u to a row type t, propagating
// u's lacks constraint onto t's open tail (if any) and rejecting labels
// t carries that u's constraint forbids.
func varBindRow(u TyVar, t Type, supply *VarSupply) (Subst, error) {
	fields, tailVar := RowToList(t)

	var collisions []string
	for _, f := range fields {
		if u.Constraint.LacksLabel(f.Label) {
			collisions = append(collisions, f.Label)
		}
	}
	if len(collisions) > 0 {
		return nil, &RepeatedLabelError{Labels: collisions, Pos: t.Pos()}
	}

	result := Subst{}
	finalT := t
	if tailVar != nil {
		combined := UnionLacks(u.Constraint, tailVar.Constraint)
		r2 := supply.FreshWith(tailVar.SrcPos, tailVar.Prefix, Row, Inferred, combined)
		tailSubst := Subst{tailVar.Id: TVar{Var: r2}}
		finalT = Apply(tailSubst, t)
		result = tailSubst
	}
	return Compose(Subst{u.Id: finalT}, result), nil
}

// unionConstraints merges two type variables into one, per mgu case 2.
func unionConstraints(u, v TyVar, supply *VarSupply) (Subst, error) {
	if u.Id == v.Id {
		return Subst{}, nil
	}
	if u.VarKind != v.VarKind {
		return nil, &KindMismatchError{V1: u, V2: v}
	}
	if u.VarKind == Star {
		return Subst{u.Id: TVar{Var: v}}, nil
	}
	r := supply.FreshWith(u.SrcPos, u.Prefix, Row, Inferred, UnionLacks(u.Constraint, v.Constraint))
	return Subst{u.Id: TVar{Var: r}, v.Id: TVar{Var: r}}, nil
}
