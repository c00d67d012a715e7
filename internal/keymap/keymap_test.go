package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationCursorModeScenario(t *testing.T) {
	assert.Equal(t, []byte("\x1bOA"), Encode(SymUp, 0, TermMode{AppCursorKeys: true}))
	assert.Equal(t, []byte("\x1b[A"), Encode(SymUp, 0, TermMode{AppCursorKeys: false}))
}

func TestApplicationCursorModeHomeEnd(t *testing.T) {
	assert.Equal(t, []byte("\x1bOH"), Encode(SymHome, 0, TermMode{AppCursorKeys: true}))
	assert.Equal(t, []byte("\x1bOF"), Encode(SymEnd, 0, TermMode{AppCursorKeys: true}))
	assert.Equal(t, []byte("\x1b[H"), Encode(SymHome, 0, TermMode{AppCursorKeys: false}))
	assert.Equal(t, []byte("\x1b[F"), Encode(SymEnd, 0, TermMode{AppCursorKeys: false}))
}

func TestCtrlLetterProducesC0Control(t *testing.T) {
	assert.Equal(t, []byte{1}, Encode(SymA, ModCtrl, TermMode{}))
	assert.Equal(t, []byte{26}, Encode(SymZ, ModCtrl, TermMode{}))
}

func TestCtrlSpaceProducesNUL(t *testing.T) {
	assert.Equal(t, []byte{0}, Encode(SymSpace, ModCtrl, TermMode{}))
}

func TestCtrlNavLiteralsTakePriorityOverPlainArrow(t *testing.T) {
	assert.Equal(t, []byte("\x1b[1;5D"), Encode(SymLeft, ModCtrl, TermMode{}))
	assert.Equal(t, []byte("\x1a"), Encode(SymZ, ModCtrl, TermMode{}))
}

func TestAltPrintableSendsEscPrefix(t *testing.T) {
	assert.Equal(t, []byte{0x1b, 'b'}, Encode(SymB, ModAlt, TermMode{}))
	assert.Equal(t, []byte{0x1b, 'B'}, Encode(SymB, ModAlt|ModShift, TermMode{}))
}

func TestAltBackspaceFBLiterals(t *testing.T) {
	assert.Equal(t, []byte{0x1b, 0x7f}, Encode(SymBackspace, ModAlt, TermMode{}))
	assert.Equal(t, []byte("\x1bf"), Encode(SymF, ModAlt, TermMode{}))
	assert.Equal(t, []byte("\x1bb"), Encode(SymB, ModAlt, TermMode{}))
}

func TestStandardSpecialKeys(t *testing.T) {
	assert.Equal(t, []byte{'\r'}, Encode(SymEnter, 0, TermMode{}))
	assert.Equal(t, []byte{0x7f}, Encode(SymBackspace, 0, TermMode{}))
	assert.Equal(t, []byte{'\t'}, Encode(SymTab, 0, TermMode{}))
	assert.Equal(t, []byte("\x1b[Z"), Encode(SymTab, ModShift, TermMode{}))
	assert.Equal(t, []byte("\x1b[15~"), Encode(SymF5, 0, TermMode{}))
}

func TestPrintableASCIIWithShiftUppercases(t *testing.T) {
	assert.Equal(t, []byte{'q'}, Encode(SymQ, 0, TermMode{}))
	assert.Equal(t, []byte{'Q'}, Encode(SymQ, ModShift, TermMode{}))
}

func TestEncodeTextVerbatimPath(t *testing.T) {
	assert.Equal(t, []byte("é"), EncodeText('é', false))
	assert.Equal(t, []byte{0x1b, 'x'}, EncodeText('x', true))
}
