package metadata

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/BurntSushi/toml"
)

//go:embed schema.cue
var schemaSource string

// File is a decoded descriptor file.
type File struct {
	Namespace string
	Functions []MethodDescriptor
}

type fileDoc struct {
	Namespace string        `toml:"namespace"`
	Functions []functionDoc `toml:"function"`
}

type functionDoc struct {
	Name          string     `toml:"name"`
	Scope         string     `toml:"scope"`
	Namespace     string     `toml:"namespace"`
	StaticLibrary string     `toml:"static_library"`
	Architecture  string     `toml:"architecture"`
	Features      []string   `toml:"features"`
	Return        *typeDoc   `toml:"return"`
	Params        []paramDoc `toml:"param"`
}

type paramDoc struct {
	Name     string  `toml:"name"`
	Type     typeDoc `toml:"type"`
	Output   bool    `toml:"output"`
	Optional bool    `toml:"optional"`
}

type typeDoc struct {
	Kind      string   `toml:"kind"`
	Name      string   `toml:"name"`
	Namespace string   `toml:"namespace"`
	Size      int      `toml:"size"`
	Elem      *typeDoc `toml:"elem"`
}

// cue values are not safe for concurrent use.
var (
	schemaMu   sync.Mutex
	schemaCtx  *cue.Context
	fileSchema cue.Value
)

func schema() (cue.Value, error) {
	if schemaCtx == nil {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("compiling descriptor schema: %w", err)
		}
		fileSchema = v.LookupPath(cue.ParsePath("#File"))
	}
	return fileSchema, nil
}

// Validate checks a decoded TOML document against the descriptor schema.
func Validate(doc map[string]any) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	def, err := schema()
	if err != nil {
		return err
	}
	v := def.Unify(schemaCtx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid descriptor file:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}

// LoadFile reads and validates a TOML descriptor file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses and validates descriptor file contents.
func Decode(data []byte) (*File, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	f := &File{Namespace: doc.Namespace}
	for _, fd := range doc.Functions {
		md, err := fd.descriptor(doc.Namespace)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fd.Name, err)
		}
		f.Functions = append(f.Functions, md)
	}
	return f, nil
}

func (fd functionDoc) descriptor(namespace string) (MethodDescriptor, error) {
	md := MethodDescriptor{
		Name:          fd.Name,
		StaticLibrary: fd.StaticLibrary,
		Architecture:  fd.Architecture,
		Scope:         fd.Scope,
		Namespace:     fd.Namespace,
		Features:      fd.Features,
		Return:        Void(),
	}
	if md.Namespace == "" {
		md.Namespace = namespace
	}
	if fd.Return != nil {
		t, err := fd.Return.typeRef()
		if err != nil {
			return md, fmt.Errorf("return: %w", err)
		}
		md.Return = t
	}
	for _, pd := range fd.Params {
		t, err := pd.Type.typeRef()
		if err != nil {
			return md, fmt.Errorf("param %s: %w", pd.Name, err)
		}
		md.Params = append(md.Params, ParameterDescriptor{
			Name:     pd.Name,
			Type:     t,
			Output:   pd.Output,
			Optional: pd.Optional,
		})
	}
	return md, nil
}

func (td typeDoc) typeRef() (TypeRef, error) {
	k, ok := ParseKind(td.Kind)
	if !ok {
		return TypeRef{}, fmt.Errorf("unknown type kind %q", td.Kind)
	}
	t := TypeRef{
		Kind:      k,
		Name:      td.Name,
		Namespace: td.Namespace,
		Size:      td.Size,
	}
	if td.Elem != nil {
		e, err := td.Elem.typeRef()
		if err != nil {
			return TypeRef{}, err
		}
		t.Elem = &e
	}
	return t, nil
}
