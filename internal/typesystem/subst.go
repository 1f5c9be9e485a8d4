package typesystem

// Subst is a finite mapping from TyVar id to the Type it stands for.
// The zero value is the identity substitution.
type Subst map[int]Type

// Apply rewrites every TVar in t that s mentions, chasing chained
// indirection (s may map a variable to another variable s itself also
// rewrites) without requiring callers to pre-compose to a fixed point.
func Apply(s Subst, t Type) Type {
	if len(s) == 0 {
		return t
	}
	return t.Apply(s)
}

// Ftv returns the free type variables of t, deduplicated by id but in
// first-occurrence order.
func Ftv(t Type) []TyVar {
	seen := make(map[int]bool)
	var out []TyVar
	for _, v := range t.FreeTypeVars() {
		if !seen[v.Id] {
			seen[v.Id] = true
			out = append(out, v)
		}
	}
	return out
}

// FtvEnv returns the free type variables of every scheme in env.
func FtvEnv(env TypeEnv) []TyVar {
	seen := make(map[int]bool)
	var out []TyVar
	for _, sch := range env {
		bound := make(map[int]bool, len(sch.Vars))
		for _, v := range sch.Vars {
			bound[v.Id] = true
		}
		for _, v := range Ftv(sch.Type) {
			if bound[v.Id] || seen[v.Id] {
				continue
			}
			seen[v.Id] = true
			out = append(out, v)
		}
	}
	return out
}

// Compose returns s1 <> s2: apply s1 to every value of s2, then union,
// preferring s1's own bindings on key conflict (s1 is "newer").
func Compose(s1, s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s2 {
		out[k] = Apply(s1, v)
	}
	for k, v := range s1 {
		out[k] = v
	}
	return out
}

// TypeEnv maps a term name to its (possibly polymorphic) scheme.
type TypeEnv map[string]Scheme

// Extend returns a new environment with name bound to sch, leaving the
// receiver untouched — environments are threaded functionally through
// Algorithm W the way the purely functional language they describe
// would thread any other immutable map.
func (env TypeEnv) Extend(name string, sch Scheme) TypeEnv {
	out := make(TypeEnv, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	out[name] = sch
	return out
}

// Remove returns a new environment with name unbound.
func (env TypeEnv) Remove(name string) TypeEnv {
	out := make(TypeEnv, len(env))
	for k, v := range env {
		if k != name {
			out[k] = v
		}
	}
	return out
}

// Apply substitutes every scheme in env, skipping each scheme's own
// bound variables (Scheme/TForAll already guards against capture).
func (env TypeEnv) Apply(s Subst) TypeEnv {
	out := make(TypeEnv, len(env))
	for k, sch := range env {
		bound := make(map[int]bool, len(sch.Vars))
		for _, v := range sch.Vars {
			bound[v.Id] = true
		}
		filtered := make(Subst, len(s))
		for id, t := range s {
			if !bound[id] {
				filtered[id] = t
			}
		}
		out[k] = Scheme{Vars: sch.Vars, Type: Apply(filtered, sch.Type)}
	}
	return out
}
