package infer

import (
	"github.com/5l1v3r1/Expresso/internal/imports"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// InferFile runs the whole front end on file: resolve its imports
// (searching libDirs for relative import paths), then run Algorithm W
// over the elaborated body under env. It is the single entry point
// spec.md §6 describes as the pipeline's outermost caller — parsing,
// import resolution and inference are composed here with the same
// fresh-variable supply threaded all the way through, and the first
// phase to fail short-circuits the rest.
func InferFile(libDirs []string, file string, env typesystem.TypeEnv) (typesystem.Scheme, error) {
	body, synonyms, supply, err := imports.Resolve(libDirs, file)
	if err != nil {
		return typesystem.Scheme{}, err
	}
	return TypeInference(body, env, synonyms, supply)
}
