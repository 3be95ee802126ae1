package alphabet_test

import (
	"testing"

	"github.com/TimothyStiles/gsearch/alphabet"
	"github.com/stretchr/testify/assert"
)

func TestRecodeDayhoffStaysInDayhoffAlphabet(t *testing.T) {
	// Excludes '*' and 'X', which recode passes through unchanged rather
	// than mapping into a Dayhoff group.
	recoded := alphabet.RecodeDayhoff("ACDEFGHIKLMNPQRSTVWY")
	assert.Equal(t, -1, alphabet.Dayhoff.Check(recoded), "every recoded byte should be a member of the Dayhoff alphabet")
}

func TestRecodeHPStaysInHPAlphabet(t *testing.T) {
	recoded := alphabet.RecodeHP("ACDEFGHIKLMNPQRSTVWY")
	assert.Equal(t, -1, alphabet.HP.Check(recoded), "every recoded byte should be a member of the HP alphabet")
}
