package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/zoobzio/dirz"
	"github.com/zoobzio/dirz/examples/ecosystem"
	"gopkg.in/yaml.v3"
)

// planStep is one entry of a plan file:
//
//	steps:
//	  - step: compress
//	    direction: in
//	    message: compression step failed
type planStep struct {
	dirz.Call `yaml:",inline"`
	Message   string `yaml:"message"`
}

type planFile struct {
	Steps []planStep `yaml:"steps"`
}

var errEmptyPlan = errors.New("plan has no steps")

// loadPlan reads a plan file, or returns the default ecosystem cycle when path is empty.
func loadPlan(path string) ([]planStep, error) {
	if path == "" {
		calls := ecosystem.Cycle()
		steps := make([]planStep, len(calls))
		for i, call := range calls {
			steps[i] = planStep{Call: call, Message: ecosystem.AbortMessage(call)}
		}
		return steps, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var plan planFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errEmptyPlan)
	}
	for i, step := range plan.Steps {
		if step.Name == "" {
			return nil, fmt.Errorf("%s: step %d: %w", path, i+1, dirz.ErrEmptyName)
		}
		if !step.Direction.Valid() {
			return nil, fmt.Errorf("%s: step %d (%s): %w", path, i+1, step.Name, dirz.ErrInvalidDirection)
		}
		if step.Message == "" {
			plan.Steps[i].Message = ecosystem.AbortMessage(step.Call)
		}
	}
	return plan.Steps, nil
}

// loadState reads an ecosystem YAML file, or returns the default world when path is empty.
func loadState(path string) (*ecosystem.Ecosystem, error) {
	if path == "" {
		return ecosystem.New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	world := ecosystem.New()
	if err := yaml.Unmarshal(data, world); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	return world, nil
}

func calls(steps []planStep) []dirz.Call {
	out := make([]dirz.Call, len(steps))
	for i, step := range steps {
		out[i] = step.Call
	}
	return out
}
