package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mYou have fallen!\033[0m", Colorize(Red, "You have fallen!"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mEnergy: 42\033[0m", Colorf(Green, "Energy: %d", 42))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mhostile\033[0m ahead \033[1m\033[32mVictory!\033[0m"
	assert.Equal(t, "hostile ahead Victory!", StripANSI(input))
}

func TestStripANSI_NoEscapes(t *testing.T) {
	input := "go north"
	assert.Equal(t, input, StripANSI(input))
}

func TestStripANSI_EmptyString(t *testing.T) {
	assert.Equal(t, "", StripANSI(""))
}

// Property: StripANSI undoes Colorize for any ASCII text.
func TestPropertyStripANSI_UndoesColorize(t *testing.T) {
	colors := []string{Red, Green, Blue, Yellow, Cyan, Magenta, White, Bold, Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		colorIdx := rapid.IntRange(0, len(colors)-1).Draw(t, "color")
		stripped := StripANSI(Colorize(colors[colorIdx], text))
		assert.Equal(t, text, stripped, "stripping a colorized string should yield the original")
	})
}

// Property: no ESC character survives stripping.
func TestPropertyStripANSI_NoEscapeSurvives(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,30}`).Draw(t, "text")
		stripped := StripANSI(Bold + Red + text + Reset)
		for _, c := range stripped {
			assert.NotEqual(t, '\033', c, "output should not contain ESC")
		}
	})
}

// Property: stripping never grows the string.
func TestPropertyStripANSI_NeverGrows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		assert.LessOrEqual(t, len(StripANSI(text)), len(text))
	})
}
