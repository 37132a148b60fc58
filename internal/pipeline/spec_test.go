package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const classifierSpec = `
name: comprehend-classifier
parameters:
  - name: ProcessingInstanceCount
    type: Integer
    default: 1
  - name: ProcessingInstanceType
    type: String
    default: ml.m5.xlarge
  - name: TrainData
    type: String
    default: s3://textpipe-data/raw.csv
  - name: TestData
    type: String
    default: s3://textpipe-artifacts/test
  - name: ModelOutput
    type: String
    default: s3://textpipe-artifacts/model
steps:
  - name: PrepareData
    type: processing
    image: 123456789012.dkr.ecr.eu-west-1.amazonaws.com/textpipe-steps:latest
    entrypoint: [/usr/local/bin/prepare-data]
    instance_type: $(Parameters.ProcessingInstanceType)
    instance_count: $(Parameters.ProcessingInstanceCount)
    inputs:
      - name: raw
        location: $(Parameters.TrainData)
        local_path: /opt/ml/processing/input
    outputs:
      - name: train
        location: s3://textpipe-artifacts/train
        local_path: /opt/ml/processing/train
      - name: test
        location: $(Parameters.TestData)
        local_path: /opt/ml/processing/test
  - name: TrainEvalClassifier
    type: processing
    image: 123456789012.dkr.ecr.eu-west-1.amazonaws.com/textpipe-steps:latest
    entrypoint: [/usr/local/bin/train-eval]
    arguments:
      - --classifier-name
      - comprehend-classifier
      - --data-access-role-arn
      - arn:aws:iam::123456789012:role/textpipe-data-access
      - --test-data-s3-uri
      - $(Parameters.TestData)
      - --output-s3-uri
      - $(Parameters.ModelOutput)
    instance_type: $(Parameters.ProcessingInstanceType)
    instance_count: $(Parameters.ProcessingInstanceCount)
    inputs:
      - name: train
        location: $(Steps.PrepareData.Outputs.train)
        local_path: /opt/ml/processing/train
      - name: test
        location: $(Steps.PrepareData.Outputs.test)
        local_path: /opt/ml/processing/test
    outputs:
      - name: evaluation
        location: s3://textpipe-artifacts/evaluation
        local_path: /opt/ml/processing/evaluation
      - name: model
        location: $(Parameters.ModelOutput)
        local_path: /opt/ml/processing/model
    property_files:
      - name: EvaluationReport
        output: evaluation
        path: evaluation.json
  - name: CheckAccuracy
    type: condition
    conditions:
      - op: gte
        left:
          step: TrainEvalClassifier
          property_file: EvaluationReport
          json_path: Accuracy
        right: 0.65
    if_steps: [DeployModel, TestEndpoint]
  - name: DeployModel
    type: processing
    image: 123456789012.dkr.ecr.eu-west-1.amazonaws.com/textpipe-steps:latest
    entrypoint: [/usr/local/bin/deploy-model]
    instance_type: $(Parameters.ProcessingInstanceType)
    instance_count: $(Parameters.ProcessingInstanceCount)
    outputs:
      - name: endpoint
        location: s3://textpipe-artifacts/endpoint
        local_path: /opt/ml/processing/endpoint
  - name: TestEndpoint
    type: lambda
    function_arn: arn:aws:lambda:eu-west-1:123456789012:function:textpipe-endpoint-test
    depends_on: [DeployModel]
    payload:
      endpoint_arn_location: s3://textpipe-artifacts/endpoint/endpoint.json
`

func TestParseSpec(t *testing.T) {
	t.Run("success - full spec parses and validates", func(t *testing.T) {
		// act
		p, err := ParseSpec([]byte(classifierSpec))

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "comprehend-classifier", p.Name)
		assert.Len(t, p.Parameters, 5)
		assert.Equal(t, IntegerParameter, p.Parameters[0].Kind)
		assert.Equal(t, "TestData", p.Parameters[3].Name)
		assert.Equal(t, "ModelOutput", p.Parameters[4].Name)
		// branch members are pulled out of the top level
		assert.Len(t, p.Steps, 3)
	})

	t.Run("success - dollar strings become refs", func(t *testing.T) {
		// arrange
		p, err := ParseSpec([]byte(classifierSpec))
		assert.NoError(t, err)

		// act
		prepare := p.Steps[0].(*ProcessingStep)
		trainEval := p.Steps[1].(*ProcessingStep)

		// assert
		assert.Equal(t, ParameterRef("ProcessingInstanceType"), prepare.InstanceType)
		assert.Equal(t, ParameterRef("TrainData"), prepare.Inputs[0].Location)
		assert.Equal(t, "s3://textpipe-artifacts/train", prepare.Outputs[0].Location)
		assert.Equal(t, ParameterRef("TestData"), prepare.Outputs[1].Location)
		assert.Equal(t, []any{
			"--classifier-name", "comprehend-classifier",
			"--data-access-role-arn", "arn:aws:iam::123456789012:role/textpipe-data-access",
			"--test-data-s3-uri", ParameterRef("TestData"),
			"--output-s3-uri", ParameterRef("ModelOutput"),
		}, trainEval.Arguments)
		assert.Equal(t, ParameterRef("ModelOutput"), trainEval.Outputs[1].Location)
	})

	t.Run("success - condition branch and accessor", func(t *testing.T) {
		// arrange
		p, err := ParseSpec([]byte(classifierSpec))
		assert.NoError(t, err)

		// act
		cond := p.Steps[2].(*ConditionStep)

		// assert
		assert.Len(t, cond.IfSteps, 2)
		assert.Equal(t, "DeployModel", cond.IfSteps[0].StepName())
		assert.Equal(t, "TestEndpoint", cond.IfSteps[1].StepName())
		assert.Equal(t, GreaterThanOrEqualTo, cond.Conditions[0].Op)
		jg, ok := cond.Conditions[0].Left.(JSONGet)
		assert.True(t, ok)
		assert.Equal(t, PropertyFileRef("TrainEvalClassifier", "EvaluationReport"), jg.File)
		assert.Equal(t, "Accuracy", jg.Path)
	})

	t.Run("fail - condition references unknown branch step", func(t *testing.T) {
		// arrange
		spec := []byte(`
name: p
steps:
  - name: a
    type: processing
    image: img
    instance_type: ml.m5.xlarge
    instance_count: 1
    outputs:
      - name: out
        location: s3://b/out
        local_path: /opt/ml/processing/out
    property_files:
      - name: pf
        output: out
        path: report.json
  - name: check
    type: condition
    conditions:
      - op: gte
        left: {step: a, property_file: pf, json_path: V}
        right: 1
    if_steps: [missing]
`)

		// act
		_, err := ParseSpec(spec)

		// assert
		assert.ErrorContains(t, err, "unknown step missing")
	})

	t.Run("fail - step claimed by two conditions", func(t *testing.T) {
		// arrange
		spec := []byte(`
name: p
steps:
  - name: a
    type: processing
    image: img
    instance_type: ml.m5.xlarge
    instance_count: 1
    outputs:
      - name: out
        location: s3://b/out
        local_path: /opt/ml/processing/out
    property_files:
      - name: pf
        output: out
        path: report.json
  - name: b
    type: lambda
    function_arn: arn:x
  - name: check1
    type: condition
    conditions:
      - op: gte
        left: {step: a, property_file: pf, json_path: V}
        right: 1
    if_steps: [b]
  - name: check2
    type: condition
    conditions:
      - op: lt
        left: {step: a, property_file: pf, json_path: V}
        right: 1
    if_steps: [b]
`)

		// act
		_, err := ParseSpec(spec)

		// assert
		assert.ErrorContains(t, err, "claimed by both")
	})

	t.Run("fail - unknown step type", func(t *testing.T) {
		// arrange
		spec := []byte("name: p\nsteps:\n  - name: a\n    type: training\n")

		// act
		_, err := ParseSpec(spec)

		// assert
		assert.ErrorContains(t, err, "unknown step type")
	})

	t.Run("fail - malformed yaml", func(t *testing.T) {
		// act
		_, err := ParseSpec([]byte("name: [unbalanced"))

		// assert
		assert.Error(t, err)
	})
}
