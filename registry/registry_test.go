package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/dataset"
)

type stubLearner struct{ name string }

func (s stubLearner) Name() string { return s.name }

type stubModel struct{ name string }

func (s stubModel) Name() string { return s.name }

func TestLookupLearnerRoundTrips(t *testing.T) {
	defer Reset()
	RegisterLearner("STUB", func() Learner { return stubLearner{name: "STUB"} })

	f, err := LookupLearner("STUB")
	require.NoError(t, err)
	assert.Equal(t, "STUB", f().Name())
}

func TestLookupLearnerMissingNamesWhatIsRegistered(t *testing.T) {
	defer Reset()
	RegisterLearner("A", func() Learner { return stubLearner{name: "A"} })
	RegisterLearner("B", func() Learner { return stubLearner{name: "B"} })

	_, err := LookupLearner("C")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "A")
	assert.Contains(t, err.Error(), "B")
}

func TestLookupModelRoundTrips(t *testing.T) {
	defer Reset()
	RegisterModel("STUB", func() Model { return stubModel{name: "STUB"} })

	f, err := LookupModel("STUB")
	require.NoError(t, err)
	assert.Equal(t, "STUB", f().Name())
}

func TestLookupModelMissing(t *testing.T) {
	defer Reset()
	_, err := LookupModel("NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatasetFormatRoundTrips(t *testing.T) {
	defer Reset()
	RegisterDatasetFormat("csv", func(path string) (dataset.Shard, error) {
		return nil, nil
	})

	opener, err := DatasetFormat("csv")
	require.NoError(t, err)
	shard, err := opener("x.csv")
	assert.NoError(t, err)
	assert.Nil(t, shard)

	_, err = DatasetFormat("sqlite")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisteredLearnersAndModelsAreSorted(t *testing.T) {
	defer Reset()
	RegisterLearner("RANDOM_FOREST", func() Learner { return stubLearner{} })
	RegisterLearner("GRADIENT_BOOSTED_TREES", func() Learner { return stubLearner{} })
	RegisterModel("RANDOM_FOREST", func() Model { return stubModel{} })

	assert.Equal(t, []string{"GRADIENT_BOOSTED_TREES", "RANDOM_FOREST"}, RegisteredLearners())
	assert.Equal(t, []string{"RANDOM_FOREST"}, RegisteredModels())
}

func TestResetClearsEveryRegistration(t *testing.T) {
	RegisterLearner("A", func() Learner { return stubLearner{} })
	RegisterModel("A", func() Model { return stubModel{} })
	RegisterDatasetFormat("a", func(path string) (dataset.Shard, error) { return nil, nil })

	Reset()

	assert.Empty(t, RegisteredLearners())
	assert.Empty(t, RegisteredModels())
	_, err := DatasetFormat("a")
	assert.ErrorIs(t, err, ErrNotFound)
}
