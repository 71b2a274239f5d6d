package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reqkey/internal/field"
	"github.com/roach88/reqkey/internal/predicate"
	"github.com/roach88/reqkey/internal/reqerr"
	"github.com/roach88/reqkey/internal/request"
)

// RequestFile is the YAML description of one request.
//
//	target: Customer
//	kind: Query
//	fields: [Id, Name]
//	where: e.Age > 18 && e.Name != null
//	order_by: [Name, Id DESC]
//	limit: 10
//
// Aggregate kinds name their column with field instead of fields.
type RequestFile struct {
	Target  string   `yaml:"target"`
	Kind    string   `yaml:"kind"`
	Fields  []string `yaml:"fields"`
	Field   string   `yaml:"field"`
	Where   string   `yaml:"where"`
	OrderBy []string `yaml:"order_by"`
	Limit   int      `yaml:"limit"`
	Hints   string   `yaml:"hints"`
}

// LoadError represents an error that occurred while reading a request file.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadRequestFile reads and decodes a request file. Unknown keys are
// rejected.
func LoadRequestFile(path string) (*RequestFile, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "no request file given (use -f)"}
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("request file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s", path), Err: err}
	}
	return DecodeRequestFile(bytes.NewReader(data))
}

// DecodeRequestFile decodes one YAML request description.
func DecodeRequestFile(r io.Reader) (*RequestFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f RequestFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: "request file is empty"}
		}
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: "decoding request file", Err: err}
	}
	return &f, nil
}

// Request builds the described request. The where clause is parsed as an
// untyped expression, so member names are used as written.
func (f *RequestFile) Request(opts ...request.Option) (*request.Request, error) {
	kind, err := ParseKind(f.Kind)
	if err != nil {
		return nil, err
	}

	var ro []request.Option
	if len(f.Fields) > 0 {
		ro = append(ro, request.WithFieldNames(f.Fields...))
	}
	if strings.TrimSpace(f.Field) != "" {
		fld, err := field.New(f.Field)
		if err != nil {
			return nil, err
		}
		ro = append(ro, request.WithField(fld))
	}
	if strings.TrimSpace(f.Where) != "" {
		g, err := predicate.FromExpressionSource(f.Where, nil, nil)
		if err != nil {
			return nil, err
		}
		ro = append(ro, request.WithWhere(g))
	}
	if len(f.OrderBy) > 0 {
		orders := make([]field.OrderField, 0, len(f.OrderBy))
		for _, s := range f.OrderBy {
			of, err := field.ParseOrder(s)
			if err != nil {
				return nil, err
			}
			orders = append(orders, of)
		}
		ro = append(ro, request.WithOrderBy(orders...))
	}
	ro = append(ro, request.WithLimit(f.Limit), request.WithHints(f.Hints))

	return request.New(kind, f.Target, append(ro, opts...)...)
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(name string) (request.Kind, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", reqerr.InvalidArgument("request kind is required")
	}
	if spec, ok := request.LookupKind(request.Kind(name)); ok {
		return spec.Kind, nil
	}
	for _, spec := range request.Kinds() {
		if strings.EqualFold(string(spec.Kind), name) {
			return spec.Kind, nil
		}
	}
	return "", reqerr.InvalidArgument("unknown request kind %q (see 'reqkey kinds')", name)
}

// CLI error codes for failures outside the request core.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeDecodeFailed = "E002" // Request file is not valid YAML
	ErrCodeReadFailed   = "E004" // Request file unreadable
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeDatabase     = "E008" // Database open or query failure
)
