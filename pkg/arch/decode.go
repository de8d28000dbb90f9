package arch

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/lzdw/lzdraw/pkg/errors"
)

//go:embed schema/architecture.schema.json
var schemaJSON []byte

// Schema returns the embedded JSON Schema document.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	return compiler.Compile(schemaJSON)
})

// wireArchitecture accepts the current shape plus the top-level keys used by
// older prompt revisions.
type wireArchitecture struct {
	Architecture
	MasterPayer         *Account   `json:"master_payer"`
	MasterEmail         string     `json:"master_email"`
	OrganizationalUnits []legacyOU `json:"organizational_units"`
	SecurityOU          []Account  `json:"security_ou"`
	WorkloadOU          []Account  `json:"workload_ou"`
	NetworkingOU        []Account  `json:"networking_ou"`
}

type legacyOU struct {
	Name     string    `json:"name"`
	Accounts []Account `json:"accounts"`
}

func (w *wireArchitecture) hasLegacy() bool {
	return w.MasterPayer != nil || w.MasterEmail != "" || len(w.OrganizationalUnits) > 0 ||
		w.SecurityOU != nil || w.WorkloadOU != nil || w.NetworkingOU != nil
}

// normalize folds legacy keys into AccountStructure. A present
// account_structure always wins over legacy keys.
func (w *wireArchitecture) normalize() *Architecture {
	a := w.Architecture
	if a.AccountStructure == nil && w.hasLegacy() {
		s := &AccountStructure{}
		if w.MasterPayer != nil {
			m := *w.MasterPayer
			s.MasterAccount = &m
		}
		for _, ou := range w.OrganizationalUnits {
			s.appendOU(CategoryFromName(ou.Name), ou.Accounts...)
		}
		s.appendOU(Security, w.SecurityOU...)
		s.appendOU(Workload, w.WorkloadOU...)
		s.appendOU(Networking, w.NetworkingOU...)
		a.AccountStructure = s
	}
	if s := a.AccountStructure; s != nil && w.MasterEmail != "" {
		if s.MasterAccount == nil {
			s.MasterAccount = &Account{}
		}
		if s.MasterAccount.Email == "" {
			s.MasterAccount.Email = w.MasterEmail
		}
	}
	return &a
}

// Decode parses an Architecture Description from JSON. The document is
// validated against the embedded schema before decoding, and legacy shapes
// are normalized into AccountStructure.
func Decode(data []byte) (*Architecture, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "architecture is empty")
	}
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "architecture is not valid JSON")
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compile architecture schema")
	}
	if result := schema.ValidateJSON(data); !result.IsValid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s", describeSchemaErrors(result.Errors))
	}

	var w wireArchitecture
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode architecture")
	}

	a := w.normalize()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func describeSchemaErrors(errs map[string]*jsonschema.EvaluationError) string {
	if _, ok := errs["anyOf"]; ok && len(errs) == 1 {
		return "account_structure is required"
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, errs[k]))
	}
	return "architecture does not match schema: " + strings.Join(parts, "; ")
}

// DecodeYAML parses an Architecture Description from YAML by converting it
// to JSON and running it through Decode.
func DecodeYAML(data []byte) (*Architecture, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode architecture YAML")
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "architecture is empty")
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "architecture YAML must use string keys")
	}
	return Decode(converted)
}

// Load reads an Architecture Description from disk. Files ending in .yaml
// or .yml are parsed as YAML; everything else as JSON.
func Load(path string) (*Architecture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "architecture file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

// Validate reports whether the architecture carries enough structure to
// render. Everything except the account structure itself has a default.
func (a *Architecture) Validate() error {
	if a == nil {
		return errors.New(errors.ErrCodeInvalidInput, "architecture is required")
	}
	if a.AccountStructure == nil {
		return errors.New(errors.ErrCodeInvalidInput, "account_structure is required")
	}
	return nil
}
