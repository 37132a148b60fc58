package pipeline

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// definitionVersion is the pipeline definition schema version understood by
// the managed service.
const definitionVersion = "2020-12-01"

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

type CompileOptions struct {
	// RoleARN is the execution role stamped into every processing step.
	RoleARN string
}

type definitionDoc struct {
	Version    string            `json:"Version"`
	Metadata   map[string]any    `json:"Metadata"`
	Parameters []definitionParam `json:"Parameters"`
	Steps      []map[string]any  `json:"Steps"`
}

type definitionParam struct {
	Name         string `json:"Name"`
	Type         string `json:"Type"`
	DefaultValue any    `json:"DefaultValue"`
}

// Definition compiles the pipeline into the JSON document the managed
// service executes. Compilation is pure: same pipeline and options, same
// bytes.
func (p *Pipeline) Definition(opts CompileOptions) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "pipeline %s", p.Name)
	}
	if opts.RoleARN == "" {
		return nil, errors.Errorf("pipeline %s: compile without a role ARN", p.Name)
	}

	doc := definitionDoc{
		Version:    definitionVersion,
		Metadata:   map[string]any{},
		Parameters: make([]definitionParam, 0, len(p.Parameters)),
		Steps:      make([]map[string]any, 0, len(p.Steps)),
	}
	for _, param := range p.Parameters {
		doc.Parameters = append(doc.Parameters, definitionParam{
			Name:         param.Name,
			Type:         string(param.Kind),
			DefaultValue: param.Default,
		})
	}
	for _, s := range p.Steps {
		stepDoc, err := compileStep(s, opts)
		if err != nil {
			return nil, err
		}
		doc.Steps = append(doc.Steps, stepDoc)
	}

	return json.MarshalIndent(doc, "", "  ")
}

func compileStep(s Step, opts CompileOptions) (map[string]any, error) {
	switch st := s.(type) {
	case *ProcessingStep:
		return compileProcessingStep(st, opts), nil
	case *LambdaStep:
		return compileLambdaStep(st), nil
	case *ConditionStep:
		return compileConditionStep(st, opts)
	default:
		return nil, errors.Errorf("step %s: unknown step type %T", s.StepName(), s)
	}
}

func compileProcessingStep(st *ProcessingStep, opts CompileOptions) map[string]any {
	volumeSize := st.VolumeSizeGB
	if volumeSize == 0 {
		volumeSize = 30
	}

	inputs := make([]map[string]any, 0, len(st.Inputs))
	for _, in := range st.Inputs {
		inputs = append(inputs, map[string]any{
			"InputName": in.Name,
			"S3Input": map[string]any{
				"S3Uri":     in.Location,
				"LocalPath": in.LocalPath,
			},
		})
	}
	outputs := make([]map[string]any, 0, len(st.Outputs))
	for _, out := range st.Outputs {
		outputs = append(outputs, map[string]any{
			"OutputName": out.Name,
			"S3Output": map[string]any{
				"S3Uri":     out.Location,
				"LocalPath": out.LocalPath,
			},
		})
	}

	args := map[string]any{
		"ProcessingResources": map[string]any{
			"ClusterConfig": map[string]any{
				"InstanceType":   st.InstanceType,
				"InstanceCount":  st.InstanceCount,
				"VolumeSizeInGB": volumeSize,
			},
		},
		"AppSpecification": map[string]any{
			"ImageUri":            st.Image,
			"ContainerEntrypoint": st.Entrypoint,
			"ContainerArguments":  st.Arguments,
		},
		"ProcessingInputs":       inputs,
		"ProcessingOutputConfig": map[string]any{"Outputs": outputs},
		"RoleArn":                opts.RoleARN,
	}

	doc := map[string]any{
		"Name":      st.Name,
		"Type":      string(ProcessingKind),
		"Arguments": args,
	}
	if len(st.DependsOn) > 0 {
		doc["DependsOn"] = st.DependsOn
	}
	if len(st.PropertyFiles) > 0 {
		pfs := make([]map[string]any, 0, len(st.PropertyFiles))
		for _, pf := range st.PropertyFiles {
			pfs = append(pfs, map[string]any{
				"PropertyFileName": pf.Name,
				"OutputName":       pf.OutputName,
				"FilePath":         pf.FilePath,
			})
		}
		doc["PropertyFiles"] = pfs
	}
	return doc
}

func compileLambdaStep(st *LambdaStep) map[string]any {
	args := map[string]any{"FunctionArn": st.FunctionARN}
	for k, v := range st.Payload {
		args[k] = v
	}
	doc := map[string]any{
		"Name":      st.Name,
		"Type":      string(LambdaKind),
		"Arguments": args,
	}
	if len(st.DependsOn) > 0 {
		doc["DependsOn"] = st.DependsOn
	}
	return doc
}

func compileConditionStep(st *ConditionStep, opts CompileOptions) (map[string]any, error) {
	conditions := make([]map[string]any, 0, len(st.Conditions))
	for _, c := range st.Conditions {
		conditions = append(conditions, map[string]any{
			"Type":       string(c.Op),
			"LeftValue":  c.Left,
			"RightValue": c.Right,
		})
	}

	compileBranch := func(branch []Step) ([]map[string]any, error) {
		docs := make([]map[string]any, 0, len(branch))
		for _, b := range branch {
			d, err := compileStep(b, opts)
			if err != nil {
				return nil, err
			}
			docs = append(docs, d)
		}
		return docs, nil
	}

	ifSteps, err := compileBranch(st.IfSteps)
	if err != nil {
		return nil, err
	}
	elseSteps, err := compileBranch(st.ElseSteps)
	if err != nil {
		return nil, err
	}

	doc := map[string]any{
		"Name": st.Name,
		"Type": string(ConditionKind),
		"Arguments": map[string]any{
			"Conditions": conditions,
			"IfSteps":    ifSteps,
			"ElseSteps":  elseSteps,
		},
	}
	if len(st.DependsOn) > 0 {
		doc["DependsOn"] = st.DependsOn
	}
	return doc, nil
}
