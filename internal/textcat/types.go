// Package textcat generates synthetic text-classification data: a task
// prompt with labels, example texts for the task and optional multi-label
// annotations.
package textcat

import (
	"context"

	"github.com/abhisek/synthgen/internal/llm"
)

// ProviderSource hands out a provider per generation task. *llm.Pool
// rotates API keys across calls; llm.Fixed always returns the same one.
type ProviderSource interface {
	Next(ctx context.Context) (llm.Provider, error)
}

// TextClassificationTask is the structured output of the prompt generator.
type TextClassificationTask struct {
	ClassificationTask string   `json:"classification_task"`
	Labels             []string `json:"labels"`
}

// DatasetDescription is an alternate input shape: a free-form dataset
// description plus the labels it should use.
type DatasetDescription struct {
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
}

// Difficulty is the education level needed to understand a generated text.
type Difficulty string

const (
	DifficultyHighSchool Difficulty = "high school"
	DifficultyCollege    Difficulty = "college"
	DifficultyPhD        Difficulty = "PhD"
)

// Clarity describes how easy a generated text is to classify.
type Clarity string

const (
	ClarityClear          Clarity = "clear"
	ClarityUnderstandable Clarity = "understandable with some effort"
	ClarityAmbiguous      Clarity = "ambiguous"
)

// Mixed lets the generator pick a difficulty or clarity per example.
const Mixed = "mixed"

// Difficulties and Clarities list the known values in prompt order.
var (
	Difficulties = []Difficulty{DifficultyHighSchool, DifficultyCollege, DifficultyPhD}
	Clarities    = []Clarity{ClarityClear, ClarityUnderstandable, ClarityAmbiguous}
)

// Param returns nil for "mixed" or empty, otherwise d unchanged.
func (d Difficulty) Param() *Difficulty {
	if d == "" || d == Mixed {
		return nil
	}
	return &d
}

// Param returns nil for "mixed" or empty, otherwise c unchanged.
func (c Clarity) Param() *Clarity {
	if c == "" || c == Mixed {
		return nil
	}
	return &c
}

// DefaultLabel is assigned when no candidate label fits a text.
const DefaultLabel = "unknown"

// Example is one generated classification sample.
type Example struct {
	Text            string     `json:"input_text"`
	Label           string     `json:"label"`
	MisleadingLabel string     `json:"misleading_label"`
	Difficulty      Difficulty `json:"difficulty"`
	Clarity         Clarity    `json:"clarity"`
}

// Row is one dataset row after column pruning. Single-label datasets
// carry Label; multi-label datasets carry Labels.
type Row struct {
	Text   string   `json:"text"`
	Label  string   `json:"label,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Dataset is the result of a generation run.
type Dataset struct {
	Task      string   `json:"task"`
	Labels    []string `json:"labels"`
	NumLabels int      `json:"num_labels"`
	Rows      []Row    `json:"rows"`
}
