package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

type ParameterKind string

const (
	IntegerParameter ParameterKind = "Integer"
	StringParameter  ParameterKind = "String"
)

// Parameter is a named, typed, defaulted pipeline input. The managed engine
// substitutes overrides at execution start; within one execution the value
// never changes.
type Parameter struct {
	Name    string        `yaml:"name"`
	Kind    ParameterKind `yaml:"type"`
	Default any           `yaml:"default"`
}

func (p Parameter) validate() error {
	if p.Name == "" {
		return errors.New("parameter without a name")
	}
	switch p.Kind {
	case IntegerParameter:
		switch p.Default.(type) {
		case int, int64, uint64, float64:
		default:
			return errors.Errorf(
				"parameter %s: integer default expected, got %T", p.Name, p.Default,
			)
		}
	case StringParameter:
		if _, ok := p.Default.(string); !ok {
			return errors.Errorf(
				"parameter %s: string default expected, got %T", p.Name, p.Default,
			)
		}
	default:
		return errors.Errorf("parameter %s: unknown type %q", p.Name, p.Kind)
	}
	return nil
}

// Ref is a symbolic reference resolved by the managed pipeline engine at
// execution time. Locally it only has to name something that exists.
type Ref struct {
	Path string
}

func ParameterRef(name string) Ref {
	return Ref{Path: "Parameters." + name}
}

func StepOutputRef(step, output string) Ref {
	return Ref{Path: fmt.Sprintf("Steps.%s.Outputs.%s", step, output)}
}

func PropertyFileRef(step, name string) Ref {
	return Ref{Path: fmt.Sprintf("Steps.%s.PropertyFiles.%s", step, name)}
}

func ExecutionIDRef() Ref {
	return Ref{Path: "Execution.PipelineExecutionId"}
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"Get":%q}`, r.Path)), nil
}
