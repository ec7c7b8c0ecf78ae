package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBadScore(t *testing.T) {
	c := Default()
	c.Score.BaseScore = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.Score.MaxScore = 1
	c.Score.BaseScore = 2
	assert.Error(t, c.Validate())
}

func TestValidateRejectsWrongPlayerCount(t *testing.T) {
	c := Default()
	c.Players = 4
	assert.Error(t, c.Validate())
}

func TestValidateRejectsWanOnlyForLiveRooms(t *testing.T) {
	c := Default()
	c.WanOnly = true
	assert.Error(t, c.Validate())
}
