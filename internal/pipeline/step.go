package pipeline

type StepKind string

const (
	ProcessingKind StepKind = "Processing"
	ConditionKind  StepKind = "Condition"
	LambdaKind     StepKind = "Lambda"
)

// Step is one node of the pipeline graph. Execution ordering, input
// resolution and output upload are all owned by the managed engine; a Step
// only declares what to run and what it reads/writes.
type Step interface {
	StepName() string
	Kind() StepKind
	Dependencies() []string
}

// Channel is a processing container data channel: an S3 location mapped to a
// fixed local path inside the container. Source/Destination may be a string
// URI or a Ref.
type Channel struct {
	Name      string
	Location  any
	LocalPath string
}

// PropertyFile declares a JSON artifact written by a processing step into one
// of its output channels, readable by later steps through a typed accessor.
type PropertyFile struct {
	Name       string
	OutputName string
	FilePath   string
}

type ProcessingStep struct {
	Name          string
	Image         string
	Entrypoint    []string
	Arguments     []any
	InstanceType  any
	InstanceCount any
	VolumeSizeGB  int64
	Inputs        []Channel
	Outputs       []Channel
	PropertyFiles []PropertyFile
	DependsOn     []string
}

func (s *ProcessingStep) StepName() string       { return s.Name }
func (s *ProcessingStep) Kind() StepKind         { return ProcessingKind }
func (s *ProcessingStep) Dependencies() []string { return s.DependsOn }

type LambdaStep struct {
	Name        string
	FunctionARN string
	Payload     map[string]any
	DependsOn   []string
}

func (s *LambdaStep) StepName() string       { return s.Name }
func (s *LambdaStep) Kind() StepKind         { return LambdaKind }
func (s *LambdaStep) Dependencies() []string { return s.DependsOn }

type ConditionKindOp string

const (
	GreaterThanOrEqualTo ConditionKindOp = "GreaterThanOrEqualTo"
	GreaterThan          ConditionKindOp = "GreaterThan"
	LessThan             ConditionKindOp = "LessThan"
	Equals               ConditionKindOp = "Equals"
)

// JSONGet is the typed property-file accessor: it reads one path out of a
// JSON artifact produced by an earlier step. Evaluated by the managed engine.
type JSONGet struct {
	File Ref
	Path string
}

func (jg JSONGet) MarshalJSON() ([]byte, error) {
	type inner struct {
		PropertyFile Ref    `json:"PropertyFile"`
		Path         string `json:"Path"`
	}
	type wrapper struct {
		JSONGet inner `json:"Std:JsonGet"`
	}
	return marshalJSON(wrapper{JSONGet: inner{PropertyFile: jg.File, Path: jg.Path}})
}

type Condition struct {
	Op    ConditionKindOp
	Left  any
	Right any
}

// ConditionStep gates its If branch on every condition holding; the Else
// branch runs otherwise. Branch members are regular steps owned by the
// condition, not schedulable on their own.
type ConditionStep struct {
	Name       string
	Conditions []Condition
	IfSteps    []Step
	ElseSteps  []Step
	DependsOn  []string
}

func (s *ConditionStep) StepName() string       { return s.Name }
func (s *ConditionStep) Kind() StepKind         { return ConditionKind }
func (s *ConditionStep) Dependencies() []string { return s.DependsOn }
