package pipeline

import (
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// Pipeline is the declarative step-dependency graph handed to the managed
// pipeline service. Nothing here executes locally: Validate checks that the
// document we are about to hand over is internally consistent, and
// Definition serializes it.
type Pipeline struct {
	Name       string
	Parameters []Parameter
	Steps      []Step
}

// allSteps returns every step including condition branch members, paired
// with the name of the owning condition step ("" for top-level steps).
func (p *Pipeline) allSteps() map[string]ownedStep {
	steps := make(map[string]ownedStep)
	var walk func(s Step, owner string)
	walk = func(s Step, owner string) {
		steps[s.StepName()] = ownedStep{step: s, owner: owner}
		if cs, ok := s.(*ConditionStep); ok {
			for _, b := range cs.IfSteps {
				walk(b, cs.Name)
			}
			for _, b := range cs.ElseSteps {
				walk(b, cs.Name)
			}
		}
	}
	for _, s := range p.Steps {
		walk(s, "")
	}
	return steps
}

type ownedStep struct {
	step  Step
	owner string
}

func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return errors.New("pipeline without a name")
	}

	params := make(map[string]Parameter)
	for _, param := range p.Parameters {
		if err := param.validate(); err != nil {
			return err
		}
		if _, ok := params[param.Name]; ok {
			return errors.Errorf("duplicate parameter %s", param.Name)
		}
		params[param.Name] = param
	}

	steps, err := p.collectSteps()
	if err != nil {
		return err
	}

	if err := p.validateRefs(params, steps); err != nil {
		return err
	}

	_, err = p.TopologicalOrder()
	return err
}

// collectSteps flattens the step tree and rejects duplicate step and
// property-file names.
func (p *Pipeline) collectSteps() (map[string]ownedStep, error) {
	steps := make(map[string]ownedStep)
	propertyFiles := make(map[string]struct{})

	var walk func(s Step, owner string) error
	walk = func(s Step, owner string) error {
		name := s.StepName()
		if name == "" {
			return errors.New("step without a name")
		}
		if _, ok := steps[name]; ok {
			return errors.Errorf("duplicate step %s", name)
		}
		steps[name] = ownedStep{step: s, owner: owner}

		switch st := s.(type) {
		case *ProcessingStep:
			outputs := make(map[string]struct{})
			for _, o := range st.Outputs {
				outputs[o.Name] = struct{}{}
			}
			for _, pf := range st.PropertyFiles {
				if _, ok := propertyFiles[pf.Name]; ok {
					return errors.Errorf("duplicate property file %s", pf.Name)
				}
				if _, ok := outputs[pf.OutputName]; !ok {
					return errors.Errorf(
						"property file %s: step %s has no output %s",
						pf.Name, name, pf.OutputName,
					)
				}
				propertyFiles[pf.Name] = struct{}{}
			}
		case *ConditionStep:
			if len(st.Conditions) == 0 {
				return errors.Errorf("condition step %s without conditions", name)
			}
			if len(st.IfSteps) == 0 && len(st.ElseSteps) == 0 {
				return errors.Errorf("condition step %s without branch steps", name)
			}
			for _, b := range st.IfSteps {
				if err := walk(b, name); err != nil {
					return err
				}
			}
			for _, b := range st.ElseSteps {
				if err := walk(b, name); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, s := range p.Steps {
		if err := walk(s, ""); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

func (p *Pipeline) validateRefs(
	params map[string]Parameter,
	steps map[string]ownedStep,
) error {
	for name, os := range steps {
		for _, ref := range stepRefs(os.step) {
			if err := p.resolveRef(ref, name, os.owner, params, steps); err != nil {
				return err
			}
		}
		for _, dep := range os.step.Dependencies() {
			target, ok := steps[dep]
			if !ok {
				return errors.Errorf("step %s depends on unknown step %s", name, dep)
			}
			if target.owner != os.owner {
				return errors.Errorf(
					"step %s depends on %s inside condition %s",
					name, dep, target.owner,
				)
			}
		}
	}
	return nil
}

func (p *Pipeline) resolveRef(
	ref Ref,
	from, fromOwner string,
	params map[string]Parameter,
	steps map[string]ownedStep,
) error {
	parts := strings.Split(ref.Path, ".")
	switch parts[0] {
	case "Parameters":
		if len(parts) != 2 {
			return errors.Errorf("step %s: malformed ref %s", from, ref.Path)
		}
		if _, ok := params[parts[1]]; !ok {
			return errors.Errorf("step %s references unknown parameter %s", from, parts[1])
		}
	case "Steps":
		if len(parts) != 4 {
			return errors.Errorf("step %s: malformed ref %s", from, ref.Path)
		}
		target, ok := steps[parts[1]]
		if !ok {
			return errors.Errorf("step %s references unknown step %s", from, parts[1])
		}
		if target.owner != "" && target.owner != fromOwner {
			return errors.Errorf(
				"step %s references %s inside condition %s",
				from, parts[1], target.owner,
			)
		}
		ps, ok := target.step.(*ProcessingStep)
		if !ok {
			return errors.Errorf(
				"step %s references outputs of non-processing step %s", from, parts[1],
			)
		}
		switch parts[2] {
		case "Outputs":
			for _, o := range ps.Outputs {
				if o.Name == parts[3] {
					return nil
				}
			}
			return errors.Errorf(
				"step %s references unknown output %s of step %s", from, parts[3], parts[1],
			)
		case "PropertyFiles":
			for _, pf := range ps.PropertyFiles {
				if pf.Name == parts[3] {
					return nil
				}
			}
			return errors.Errorf(
				"step %s references unknown property file %s of step %s",
				from, parts[3], parts[1],
			)
		default:
			return errors.Errorf("step %s: malformed ref %s", from, ref.Path)
		}
	case "Execution":
		// engine-provided, always resolvable
	default:
		return errors.Errorf("step %s: malformed ref %s", from, ref.Path)
	}
	return nil
}

// TopologicalOrder returns a deterministic execution order over all steps,
// honoring explicit DependsOn edges, data-flow references and condition
// containment. The managed engine runs independent steps in parallel; the
// order matters locally only for validation and display.
func (p *Pipeline) TopologicalOrder() ([]string, error) {
	steps, err := p.collectSteps()
	if err != nil {
		return nil, err
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for name := range steps {
		if err := g.AddVertex(name); err != nil {
			return nil, errors.Wrapf(err, "step %s", name)
		}
	}

	addEdge := func(from, to string) error {
		if from == to {
			return errors.Errorf("step %s depends on itself", to)
		}
		err := g.AddEdge(from, to)
		if err == nil || errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil
		}
		if errors.Is(err, graph.ErrEdgeCreatesCycle) {
			return errors.Errorf("dependency cycle through %s and %s", from, to)
		}
		return err
	}

	for name, os := range steps {
		for _, dep := range os.step.Dependencies() {
			if err := addEdge(dep, name); err != nil {
				return nil, err
			}
		}
		for _, ref := range stepRefs(os.step) {
			parts := strings.Split(ref.Path, ".")
			if len(parts) >= 2 && parts[0] == "Steps" {
				if err := addEdge(parts[1], name); err != nil {
					return nil, err
				}
			}
		}
		if os.owner != "" {
			if err := addEdge(os.owner, name); err != nil {
				return nil, err
			}
		}
	}

	return graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
}

// stepRefs collects every symbolic reference a step makes.
func stepRefs(s Step) []Ref {
	var refs []Ref
	addValue := func(v any) {
		switch val := v.(type) {
		case Ref:
			refs = append(refs, val)
		case JSONGet:
			refs = append(refs, val.File)
		}
	}

	switch st := s.(type) {
	case *ProcessingStep:
		addValue(st.InstanceType)
		addValue(st.InstanceCount)
		for _, a := range st.Arguments {
			addValue(a)
		}
		for _, in := range st.Inputs {
			addValue(in.Location)
		}
		for _, out := range st.Outputs {
			addValue(out.Location)
		}
	case *LambdaStep:
		for _, v := range st.Payload {
			addValue(v)
		}
	case *ConditionStep:
		for _, c := range st.Conditions {
			addValue(c.Left)
			addValue(c.Right)
		}
	}
	return refs
}
