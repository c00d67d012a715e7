package osk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/raventerm/internal/keymap"
)

func simpleLayers() map[keymap.Mods][]Row {
	return map[keymap.Mods][]Row{
		0: {
			{Keys: []KeyDescriptor{{Kind: DescLiteral, Text: "a"}, {Kind: DescLiteral, Text: "b"}}},
			{Keys: []KeyDescriptor{{Kind: DescLiteral, Text: "1"}, {Kind: DescLiteral, Text: "2"}}},
		},
		keymap.ModShift: {
			{Keys: []KeyDescriptor{{Kind: DescLiteral, Text: "A"}, NAKey}},
			DefaultRow,
		},
	}
}

func newTestModel() *Model {
	m := New(zerolog.Nop())
	for mask, rows := range simpleLayers() {
		m.SetLayer(mask, rows)
	}
	return m
}

func TestEffectiveRowFallsBackThroughMask(t *testing.T) {
	m := newTestModel()

	row, ok := m.EffectiveRow(0, keymap.ModShift)
	require.True(t, ok)
	assert.Equal(t, "A", row.Keys[0].Text)

	row, ok = m.EffectiveRow(1, keymap.ModShift)
	require.True(t, ok)
	assert.Equal(t, "1", row.Keys[0].Text, "DEFAULT row falls back to base layer")
}

func TestEffectiveKeyNAFallsBackToBase(t *testing.T) {
	m := newTestModel()

	key, ok := m.EffectiveKey(0, 1, keymap.ModShift)
	require.True(t, ok)
	assert.Equal(t, "b", key.Text, "N/A slot falls back to the base layer's key")
}

func TestCharsModeNavigationWraps(t *testing.T) {
	m := newTestModel()
	m.SetMode(ModeChars)

	m.MoveRow(-1)
	res := m.Select()
	assert.Equal(t, []byte("1"), res.Bytes, "Up from row 0 wraps to the last row")

	m.MoveChar(1)
	res = m.Select()
	assert.Equal(t, []byte("2"), res.Bytes)
}

func TestModToggleIsOneShotAndClearsAfterLiteral(t *testing.T) {
	m := newTestModel()
	m.SetMode(ModeChars)

	res := m.Select() // selects 'a' at (0,0) under no modifiers
	assert.Equal(t, []byte("a"), res.Bytes)

	// Manually toggle shift on via the Select path by placing a
	// ModToggle key at (0,0) in a throwaway layer and selecting it.
	m.SetLayer(0, []Row{{Keys: []KeyDescriptor{{Kind: DescModToggle, Mods: keymap.ModShift}}}})
	res = m.Select()
	assert.Empty(t, res.Bytes, "ModToggle alone emits nothing")

	m.SetLayer(keymap.ModShift, []Row{{Keys: []KeyDescriptor{{Kind: DescLiteral, Text: "A"}}}})
	res = m.Select()
	assert.Equal(t, []byte("A"), res.Bytes, "one-shot shift applies to the next literal")

	// One-shot should have cleared: selecting again under the
	// now-empty shift layer falls back to base, whatever base has.
	m.SetLayer(0, []Row{{Keys: []KeyDescriptor{{Kind: DescLiteral, Text: "x"}}}})
	res = m.Select()
	assert.Equal(t, []byte("x"), res.Bytes, "one-shot modifier cleared after the prior literal")
}

func TestHeldModifierMatchingPopulatedLayerIsConsumed(t *testing.T) {
	m := newTestModel()
	m.SetMode(ModeChars)
	m.SetHeld(keymap.ModCtrl)
	m.SetLayer(0, []Row{{Keys: []KeyDescriptor{{Kind: DescSequence, Sym: keymap.SymA}}}})
	m.SetLayer(keymap.ModCtrl, []Row{{Keys: []KeyDescriptor{{Kind: DescSequence, Sym: keymap.SymA}}}})

	res := m.Select()
	// Ctrl is held and ModCtrl's layer (populated) is selected, so Ctrl
	// must not also propagate into the emitted key event: Ctrl+A alone
	// would be a C0 control, not the plain 'a' expected here.
	assert.Equal(t, []byte("a"), res.Bytes)
}

func TestSpecialModeControlSetGrowsAndShrinksWithCustomSets(t *testing.T) {
	m := New(zerolog.Nop())
	base := m.ControlSetLen()

	dir := t.TempDir()
	path := filepath.Join(dir, "git.keys")
	content := "name=git\nstatus:git status\\n\ndiff:git diff\\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m.MakeSetAvailable("git", path)
	assert.Equal(t, base+1, m.ControlSetLen())

	require.NoError(t, m.AddCustomSet(path))
	assert.Equal(t, base+1, m.ControlSetLen(), "loading doesn't change CONTROL's key count, only the key's polarity")
	assert.Contains(t, m.LoadedSets(), "git")

	found := false
	for _, k := range m.specialSets[0].Keys {
		if k.Kind == DescUnloadSet && k.Text == "-git" {
			found = true
		}
	}
	assert.True(t, found, "CONTROL shows -git once loaded")

	m.RemoveCustomSet("git")
	assert.Equal(t, base+1, m.ControlSetLen())
	assert.NotContains(t, m.LoadedSets(), "git")

	found = false
	for _, k := range m.specialSets[0].Keys {
		if k.Kind == DescLoadSet && k.Text == "+git" {
			found = true
		}
	}
	assert.True(t, found, "CONTROL reverts to +git after removal")
}

func TestMacroExpandsLiteralsAndTokens(t *testing.T) {
	m := New(zerolog.Nop())
	out, sawSeq := m.expandMacroLocked(`git commit{ENTER}`)
	assert.True(t, sawSeq)
	assert.Equal(t, "git commit\r", string(out))
}

func TestMacroEscapedBraceIsLiteral(t *testing.T) {
	m := New(zerolog.Nop())
	out, sawSeq := m.expandMacroLocked(`echo \{literal\}`)
	assert.False(t, sawSeq)
	assert.Equal(t, "echo {literal}", string(out))
}

func TestParseLayoutFileBasicSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.kb")
	content := "[base]\na b c\n{N/A} {ENTER}\n\n[shift]\nA B C\n{DEFAULT}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	layers, err := ParseLayoutFile(path)
	require.NoError(t, err)
	require.Len(t, layers[0], 2)
	assert.Equal(t, "a", layers[0][0].Keys[0].Text)
	assert.Equal(t, DescNA, layers[0][1].Keys[0].Kind)
	assert.Equal(t, keymap.SymEnter, layers[0][1].Keys[1].Sym)

	require.Len(t, layers[keymap.ModShift], 2)
	assert.Equal(t, "A", layers[keymap.ModShift][0].Keys[0].Text)
	assert.True(t, layers[keymap.ModShift][1].Default)
}

func TestParseKeySetFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.keys")
	content := "name=tools\nstatus:git status\\n\nnewtab:LOAD_FILE:other\\:set\ngohome:SEQ:HOME\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	name, _, keys, err := ParseKeySetFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tools", name)
	require.Len(t, keys, 3)
	assert.Equal(t, DescLiteral, keys[0].Kind)
	assert.Equal(t, `git status\n`, keys[0].Text)
	assert.Equal(t, DescLoadSet, keys[1].Kind)
	assert.Equal(t, "other:set", keys[1].Text)
	assert.Equal(t, DescSequence, keys[2].Kind)
	assert.Equal(t, keymap.SymHome, keys[2].Sym)
}

func TestTogglePosition(t *testing.T) {
	m := New(zerolog.Nop())
	assert.Equal(t, PositionOpposite, m.Position())
	m.TogglePosition()
	assert.Equal(t, PositionSame, m.Position())
	m.TogglePosition()
	assert.Equal(t, PositionOpposite, m.Position())
}
