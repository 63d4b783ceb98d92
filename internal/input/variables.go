package input

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/svi-cli/internal/model"
)

// variablesFile is the on-disk shape of a variable catalog override.
type variablesFile struct {
	Variables []model.VariableDef `yaml:"variables"`
}

// ReadVariables parses a YAML variable catalog.
func ReadVariables(r io.Reader) ([]model.VariableDef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "input: read variables")
	}
	var file variablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "input: parse variables yaml")
	}
	if len(file.Variables) == 0 {
		return nil, eris.New("input: variables file defines no variables")
	}
	return file.Variables, nil
}

// LoadVariables reads a YAML variable catalog from disk.
func LoadVariables(path string) ([]model.VariableDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input: open variables %s", path)
	}
	defer f.Close()
	return ReadVariables(f)
}

// SelectVariables applies include/exclude/inverse overrides to a catalog.
// Include and exclude are mutually exclusive; naming an unknown variable in
// any list is an error rather than a silent no-op. A non-empty inverse list
// is the complete inverse set: it replaces the catalog's inverse flags
// rather than extending them.
func SelectVariables(defs []model.VariableDef, include, exclude, inverse []string) ([]model.VariableDef, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return nil, eris.New("input: include and exclude are mutually exclusive")
	}

	byName := make(map[string]int, len(defs))
	for i, d := range defs {
		byName[d.Name] = i
	}
	for _, list := range [][]string{include, exclude, inverse} {
		for _, name := range list {
			if _, ok := byName[name]; !ok {
				return nil, eris.Errorf("input: unknown variable %q", name)
			}
		}
	}

	out := make([]model.VariableDef, 0, len(defs))
	switch {
	case len(include) > 0:
		keep := toSet(include)
		for _, d := range defs {
			if _, ok := keep[d.Name]; ok {
				out = append(out, d)
			}
		}
	case len(exclude) > 0:
		drop := toSet(exclude)
		for _, d := range defs {
			if _, ok := drop[d.Name]; !ok {
				out = append(out, d)
			}
		}
	default:
		out = append(out, defs...)
	}

	if len(inverse) > 0 {
		flip := toSet(inverse)
		for i := range out {
			_, ok := flip[out[i].Name]
			out[i].Inverse = ok
		}
	}
	return out, nil
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
