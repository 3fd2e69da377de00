package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionStructure(t *testing.T) {
	key := RuleKey{CampusID: 2, Grade: "Grade 10", Frequency: FrequencyMonthly}

	none := NewResolution(key, nil)
	assert.Equal(t, "none", none.Kind.String())
	_, err := none.Structure()
	assert.ErrorIs(t, err, ErrNoApplicableRule)

	unique := NewResolution(key, []FeeStructure{{ID: 7}})
	rule, err := unique.Structure()
	require.NoError(t, err)
	assert.EqualValues(t, 7, rule.ID)

	ambiguous := NewResolution(key, []FeeStructure{{ID: 7}, {ID: 8}})
	_, err = ambiguous.Structure()
	assert.ErrorIs(t, err, ErrAmbiguousRule)
	assert.Contains(t, err.Error(), "7,8")
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" monthly ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyMonthly, f)

	_, err = ParseFrequency("weekly")
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}
