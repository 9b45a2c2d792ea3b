package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/branchml/forest/config"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/grower"
)

func specWithLabel(labelType dataspec.ColumnType) *dataspec.Dataspec {
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical})
	spec.AddColumn(&dataspec.Column{Name: "label", Type: labelType})
	return spec
}

func TestTaskForRanksWhenGroupColumnPresent(t *testing.T) {
	spec := specWithLabel(dataspec.Numerical)
	task := taskFor(&config.TrainingConfig{Learner: "GRADIENT_BOOSTED_TREES"}, spec, 1, 0)
	assert.Equal(t, forest.Ranking, task)
}

func TestTaskForGBTDefaultsToClassification(t *testing.T) {
	spec := specWithLabel(dataspec.Categorical)
	task := taskFor(&config.TrainingConfig{Learner: "GRADIENT_BOOSTED_TREES"}, spec, 1, -1)
	assert.Equal(t, forest.Classification, task)
}

func TestTaskForGBTSquaredErrorIsRegression(t *testing.T) {
	spec := specWithLabel(dataspec.Numerical)
	task := taskFor(&config.TrainingConfig{Learner: "GRADIENT_BOOSTED_TREES", Loss: "SQUARED_ERROR"}, spec, 1, -1)
	assert.Equal(t, forest.Regression, task)
}

func TestTaskForRandomForestUsesLabelColumnType(t *testing.T) {
	spec := specWithLabel(dataspec.Categorical)
	task := taskFor(&config.TrainingConfig{Learner: "RANDOM_FOREST"}, spec, 1, -1)
	assert.Equal(t, forest.Classification, task)

	spec2 := specWithLabel(dataspec.Numerical)
	task2 := taskFor(&config.TrainingConfig{Learner: "RANDOM_FOREST"}, spec2, 1, -1)
	assert.Equal(t, forest.Regression, task2)
}

func TestGrowingStrategyForDefaultsToLocal(t *testing.T) {
	assert.Equal(t, grower.Local, growingStrategyFor(""))
	assert.Equal(t, grower.BestFirst, growingStrategyFor("BEST_FIRST_GLOBAL"))
}
