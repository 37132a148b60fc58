package pipeline

import (
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// refPattern matches reference strings in spec values, e.g.
// "$(Parameters.TrainData)" or "$(Steps.TrainEval.Outputs.evaluation)".
var refPattern = regexp.MustCompile(`^\$\((.+)\)$`)

type specDoc struct {
	Name       string      `yaml:"name"`
	Parameters []specParam `yaml:"parameters"`
	Steps      []specStep  `yaml:"steps"`
}

type specParam struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
}

type specStep struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	DependsOn []string `yaml:"depends_on"`

	// processing
	Image         string             `yaml:"image"`
	Entrypoint    []string           `yaml:"entrypoint"`
	Arguments     []any              `yaml:"arguments"`
	InstanceType  any                `yaml:"instance_type"`
	InstanceCount any                `yaml:"instance_count"`
	VolumeSizeGB  int64              `yaml:"volume_size_gb"`
	Inputs        []specChannel      `yaml:"inputs"`
	Outputs       []specChannel      `yaml:"outputs"`
	PropertyFiles []specPropertyFile `yaml:"property_files"`

	// lambda
	FunctionARN string         `yaml:"function_arn"`
	Payload     map[string]any `yaml:"payload"`

	// condition
	Conditions []specCondition `yaml:"conditions"`
	IfSteps    []string        `yaml:"if_steps"`
	ElseSteps  []string        `yaml:"else_steps"`
}

type specChannel struct {
	Name      string `yaml:"name"`
	Location  any    `yaml:"location"`
	LocalPath string `yaml:"local_path"`
}

type specPropertyFile struct {
	Name       string `yaml:"name"`
	OutputName string `yaml:"output"`
	FilePath   string `yaml:"path"`
}

type specCondition struct {
	Op    string `yaml:"op"`
	Left  any    `yaml:"left"`
	Right any    `yaml:"right"`
}

// ParseSpec reads a YAML pipeline spec into a validated Pipeline. Strings of
// the form "$(Parameters.X)" or "$(Steps.S.Outputs.O)" become references
// resolved by the engine at execution time. Steps named in a condition's
// if_steps/else_steps are declared at the top level like any other step and
// are moved into the condition's branch.
func ParseSpec(data []byte) (*Pipeline, error) {
	var doc specDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing pipeline spec")
	}
	if doc.Name == "" {
		return nil, errors.New("pipeline spec without a name")
	}

	p := &Pipeline{Name: doc.Name}
	for _, sp := range doc.Parameters {
		kind, err := parameterKind(sp.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", sp.Name)
		}
		p.Parameters = append(p.Parameters, Parameter{
			Name:    sp.Name,
			Kind:    kind,
			Default: sp.Default,
		})
	}

	built := make(map[string]Step, len(doc.Steps))
	order := make([]string, 0, len(doc.Steps))
	for _, ss := range doc.Steps {
		if ss.Name == "" {
			return nil, errors.New("step without a name")
		}
		if _, ok := built[ss.Name]; ok {
			return nil, errors.Errorf("duplicate step %s", ss.Name)
		}
		s, err := buildStep(ss)
		if err != nil {
			return nil, err
		}
		built[ss.Name] = s
		order = append(order, ss.Name)
	}

	// attach branch members to their owning condition
	claimed := make(map[string]string)
	for _, ss := range doc.Steps {
		if ss.Type != "condition" {
			continue
		}
		cond := built[ss.Name].(*ConditionStep)
		attach := func(names []string) ([]Step, error) {
			members := make([]Step, 0, len(names))
			for _, name := range names {
				member, ok := built[name]
				if !ok {
					return nil, errors.Errorf(
						"condition %s references unknown step %s", ss.Name, name)
				}
				if owner, ok := claimed[name]; ok {
					return nil, errors.Errorf(
						"step %s claimed by both %s and %s", name, owner, ss.Name)
				}
				claimed[name] = ss.Name
				members = append(members, member)
			}
			return members, nil
		}
		var err error
		if cond.IfSteps, err = attach(ss.IfSteps); err != nil {
			return nil, err
		}
		if cond.ElseSteps, err = attach(ss.ElseSteps); err != nil {
			return nil, err
		}
	}

	for _, name := range order {
		if _, ok := claimed[name]; ok {
			continue
		}
		p.Steps = append(p.Steps, built[name])
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func parameterKind(s string) (ParameterKind, error) {
	switch strings.ToLower(s) {
	case "integer":
		return IntegerParameter, nil
	case "string", "":
		return StringParameter, nil
	default:
		return "", errors.Errorf("unknown parameter type %q", s)
	}
}

func buildStep(ss specStep) (Step, error) {
	switch ss.Type {
	case "processing":
		return buildProcessingStep(ss)
	case "lambda":
		return &LambdaStep{
			Name:        ss.Name,
			FunctionARN: ss.FunctionARN,
			Payload:     convertMap(ss.Payload),
			DependsOn:   ss.DependsOn,
		}, nil
	case "condition":
		return buildConditionStep(ss)
	default:
		return nil, errors.Errorf("step %s: unknown step type %q", ss.Name, ss.Type)
	}
}

func buildProcessingStep(ss specStep) (Step, error) {
	if ss.Image == "" {
		return nil, errors.Errorf("step %s: processing step without an image", ss.Name)
	}
	s := &ProcessingStep{
		Name:          ss.Name,
		Image:         ss.Image,
		Entrypoint:    ss.Entrypoint,
		Arguments:     convertSlice(ss.Arguments),
		InstanceType:  convertValue(ss.InstanceType),
		InstanceCount: convertValue(ss.InstanceCount),
		VolumeSizeGB:  ss.VolumeSizeGB,
		DependsOn:     ss.DependsOn,
	}
	for _, ch := range ss.Inputs {
		s.Inputs = append(s.Inputs, Channel{
			Name:      ch.Name,
			Location:  convertValue(ch.Location),
			LocalPath: ch.LocalPath,
		})
	}
	for _, ch := range ss.Outputs {
		s.Outputs = append(s.Outputs, Channel{
			Name:      ch.Name,
			Location:  convertValue(ch.Location),
			LocalPath: ch.LocalPath,
		})
	}
	for _, pf := range ss.PropertyFiles {
		s.PropertyFiles = append(s.PropertyFiles, PropertyFile{
			Name:       pf.Name,
			OutputName: pf.OutputName,
			FilePath:   pf.FilePath,
		})
	}
	return s, nil
}

func buildConditionStep(ss specStep) (Step, error) {
	s := &ConditionStep{Name: ss.Name, DependsOn: ss.DependsOn}
	for _, sc := range ss.Conditions {
		op, err := conditionOp(sc.Op)
		if err != nil {
			return nil, errors.Wrapf(err, "condition %s", ss.Name)
		}
		left, err := convertOperand(ss.Name, sc.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertOperand(ss.Name, sc.Right)
		if err != nil {
			return nil, err
		}
		s.Conditions = append(s.Conditions, Condition{Op: op, Left: left, Right: right})
	}
	return s, nil
}

func conditionOp(s string) (ConditionKindOp, error) {
	switch s {
	case "gte", string(GreaterThanOrEqualTo):
		return GreaterThanOrEqualTo, nil
	case "gt", string(GreaterThan):
		return GreaterThan, nil
	case "lt", string(LessThan):
		return LessThan, nil
	case "eq", string(Equals):
		return Equals, nil
	default:
		return "", errors.Errorf("unknown condition op %q", s)
	}
}

// convertOperand handles the property-file accessor form
//
//	left:
//	  step: TrainEval
//	  property_file: EvaluationReport
//	  json_path: Accuracy
//
// and falls back to plain value conversion otherwise.
func convertOperand(condName string, v any) (any, error) {
	m, ok := asStringMap(v)
	if !ok {
		return convertValue(v), nil
	}
	step, _ := m["step"].(string)
	pf, _ := m["property_file"].(string)
	path, _ := m["json_path"].(string)
	if step == "" || pf == "" || path == "" {
		return nil, errors.Errorf(
			"condition %s: accessor needs step, property_file and json_path", condName)
	}
	return JSONGet{File: PropertyFileRef(step, pf), Path: path}, nil
}

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// convertValue recursively turns "$(...)" strings into references.
func convertValue(v any) any {
	switch val := v.(type) {
	case string:
		if m := refPattern.FindStringSubmatch(val); m != nil {
			return Ref{Path: m[1]}
		}
		return val
	case []any:
		return convertSlice(val)
	case map[string]any:
		return convertMap(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			if ks, ok := k.(string); ok {
				out[ks] = convertValue(v)
			}
		}
		return out
	default:
		return v
	}
}

func convertSlice(in []any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = convertValue(v)
	}
	return out
}

func convertMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = convertValue(v)
	}
	return out
}
