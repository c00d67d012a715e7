// Package osk implements the on-screen keyboard's logical model: a
// modifier-layered character view, a flat special-key-set view, and
// the navigation/emission rules that drive both without ever touching
// a renderer. Grounded in the teacher's menu.Menu — a stateful, modal,
// file-backed UI model with a selection index and an open/close
// lifecycle — generalized here to the two-mode (Chars/Special) OSK
// that spec.md's distillation adds on top of the teacher's shape.
package osk

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/javanhut/raventerm/internal/keymap"
)

// DescKind tags the variant a KeyDescriptor holds.
type DescKind int

const (
	DescLiteral DescKind = iota
	DescSequence
	DescMacro
	DescModToggle
	DescInternalCommand
	DescLoadSet
	DescUnloadSet
	DescNA
)

// KeyDescriptor is the tagged variant spec.md §3 names "Key descriptor".
type KeyDescriptor struct {
	Kind DescKind
	Text string       // Literal/Macro text, LoadSet path or set name, UnloadSet name, InternalCommand tag; CONTROL's generated keys prefix the name with "+"/"-"
	Sym  keymap.Sym   // Sequence keycode
	Mods keymap.Mods  // Sequence's own modifier set, or the ModToggle target
}

// NAKey is the single-slot fallback marker ({N/A} in a .kb file).
var NAKey = KeyDescriptor{Kind: DescNA}

// Row is an ordered list of key descriptors, or the whole-row DEFAULT
// fallback marker.
type Row struct {
	Default bool
	Keys    []KeyDescriptor
}

// DefaultRow is the whole-row fallback marker ({DEFAULT} alone on a line).
var DefaultRow = Row{Default: true}

// Internal command tags, the .keys file format's CMD_* names.
const (
	CmdFontInc                = "CMD_FONT_INC"
	CmdFontDec                = "CMD_FONT_DEC"
	CmdCursorToggleVisibility = "CMD_CURSOR_TOGGLE_VISIBILITY"
	CmdCursorToggleBlink      = "CMD_CURSOR_TOGGLE_BLINK"
	CmdCursorCycleStyle       = "CMD_CURSOR_CYCLE_STYLE"
	CmdTerminalReset          = "CMD_TERMINAL_RESET"
	CmdTerminalClear          = "CMD_TERMINAL_CLEAR"
	CmdOskTogglePosition      = "CMD_OSK_TOGGLE_POSITION"
)

var fixedActionKeys = []KeyDescriptor{
	{Kind: DescModToggle, Mods: keymap.ModShift},
	{Kind: DescModToggle, Mods: keymap.ModCtrl},
	{Kind: DescModToggle, Mods: keymap.ModAlt},
	{Kind: DescInternalCommand, Text: CmdFontInc},
	{Kind: DescInternalCommand, Text: CmdFontDec},
	{Kind: DescInternalCommand, Text: CmdCursorToggleVisibility},
	{Kind: DescInternalCommand, Text: CmdCursorToggleBlink},
	{Kind: DescInternalCommand, Text: CmdCursorCycleStyle},
	{Kind: DescInternalCommand, Text: CmdTerminalReset},
	{Kind: DescInternalCommand, Text: CmdTerminalClear},
	{Kind: DescInternalCommand, Text: CmdOskTogglePosition},
}

// ControlSetName is the always-present, self-modifying menu set.
const ControlSetName = "CONTROL"

// SpecialKeySet is a named, flat array of keys selectable in Special mode.
type SpecialKeySet struct {
	Name          string
	FilePath      string
	Keys          []KeyDescriptor
	ActiveModMask keymap.Mods
}

// Mode is Chars (modifier-layered rows) or Special (flat named sets).
type Mode int

const (
	ModeChars Mode = iota
	ModeSpecial
)

// PositionMode decides whether the OSK bar sits opposite or on the
// same half of the screen as the cursor.
type PositionMode int

const (
	PositionOpposite PositionMode = iota
	PositionSame
)

// EmitResult is what selecting a key produced: PTY bytes to write,
// and/or an internal command tag for the embedder to execute.
type EmitResult struct {
	Bytes   []byte
	Command string
}

// Model is the OSK's full logical state.
type Model struct {
	mu sync.Mutex

	layers map[keymap.Mods][]Row

	mode    Mode
	setIdx  int
	charIdx int

	held    keymap.Mods
	oneShot keymap.Mods

	specialSets        []SpecialKeySet
	available          map[string]string // name -> file path, not yet loaded
	loaded             map[string]bool
	showSpecialSetName bool

	position PositionMode

	termMode keymap.TermMode

	log zerolog.Logger
}

// New returns an OSK model with an empty Chars layer table and a
// CONTROL set holding only its fixed action keys.
func New(logger zerolog.Logger) *Model {
	m := &Model{
		layers:    make(map[keymap.Mods][]Row),
		available: make(map[string]string),
		loaded:    make(map[string]bool),
		log:       logger,
	}
	m.specialSets = []SpecialKeySet{{Name: ControlSetName, Keys: append([]KeyDescriptor{}, fixedActionKeys...)}}
	return m
}

// SetLayer installs the rows for a given modifier mask, replacing any
// rows previously installed for that mask (used by the .kb loader).
func (m *Model) SetLayer(mask keymap.Mods, rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layers[mask] = rows
}

// SetTermMode updates the terminal-mode snapshot the encoder consults
// (currently just application-cursor-keys) for Sequence emission.
func (m *Model) SetTermMode(tm keymap.TermMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.termMode = tm
}

// SetHeld sets which modifiers are currently physically held.
func (m *Model) SetHeld(mods keymap.Mods) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = mods
}

// Mode returns the current Chars/Special mode.
func (m *Model) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// SetMode switches between Chars and Special, resetting indices.
func (m *Model) SetMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	m.setIdx = 0
	m.charIdx = 0
	m.showSpecialSetName = false
}

// ---- effective row/key resolution, spec.md §4.D ----

// EffectiveRow resolves the row shown for setIdx at the given
// modifier mask: descend from mask toward 0, honoring DEFAULT.
func (m *Model) EffectiveRow(setIdx int, mask keymap.Mods) (Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectiveRowLocked(setIdx, mask)
}

func (m *Model) effectiveRowLocked(setIdx int, mask keymap.Mods) (Row, bool) {
	for mm := int(mask); mm >= 0; mm-- {
		candidate := keymap.Mods(mm)
		if int(candidate)&int(mask) != int(candidate) {
			continue
		}
		rows, ok := m.layers[candidate]
		if !ok || setIdx < 0 || setIdx >= len(rows) {
			continue
		}
		row := rows[setIdx]
		if !row.Default {
			return row, true
		}
		if candidate == 0 {
			return Row{}, false
		}
	}
	base, ok := m.layers[0]
	if !ok || setIdx < 0 || setIdx >= len(base) {
		return Row{}, false
	}
	if base[setIdx].Default {
		return Row{}, false
	}
	return base[setIdx], true
}

// EffectiveKey resolves the key at keyIdx within the effective row for
// (setIdx, mask), falling back to the base-layer key when the slot is
// the N/A marker.
func (m *Model) EffectiveKey(setIdx, keyIdx int, mask keymap.Mods) (KeyDescriptor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.effectiveRowLocked(setIdx, mask)
	if !ok || keyIdx < 0 || keyIdx >= len(row.Keys) {
		return KeyDescriptor{}, false
	}
	key := row.Keys[keyIdx]
	if key.Kind != DescNA {
		return key, true
	}
	base, ok := m.layers[0]
	if !ok || setIdx < 0 || setIdx >= len(base) {
		return KeyDescriptor{}, false
	}
	baseRow := base[setIdx]
	if baseRow.Default || keyIdx >= len(baseRow.Keys) {
		return KeyDescriptor{}, false
	}
	return baseRow.Keys[keyIdx], true
}

// rowCountLocked returns how many rows the mask's layer (or the base layer)
// has, used to clamp Chars-mode Up/Down.
func (m *Model) rowCountLocked(mask keymap.Mods) int {
	if rows, ok := m.layers[mask]; ok {
		return len(rows)
	}
	return len(m.layers[0])
}

// effectiveModifiersLocked combines held and one-shot modifiers, then
// strips any held modifier that exactly matches a populated layer —
// that modifier was "consumed" switching to this layer, per spec.md's
// layer-switch discipline, and must not also propagate to the emitted
// key event.
func (m *Model) effectiveModifiersLocked() keymap.Mods {
	combined := m.held | m.oneShot
	for _, bit := range []keymap.Mods{keymap.ModShift, keymap.ModCtrl, keymap.ModAlt, keymap.ModGui} {
		if m.held&bit == 0 {
			continue
		}
		if rows, ok := m.layers[bit]; ok && len(rows) > 0 {
			combined &^= bit
		}
	}
	return combined
}

func (m *Model) clearOneShot() {
	m.oneShot = 0
}

// ---- Chars-mode navigation ----

// MoveRow cycles set_idx (really: the selected row) within the
// current mask's row count, resetting char_idx.
func (m *Model) MoveRow(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.rowCountLocked(m.held | m.oneShot)
	if n == 0 {
		return
	}
	m.setIdx = ((m.setIdx+delta)%n + n) % n
	m.charIdx = 0
}

// MoveChar cycles char_idx within the effective row for the current mask.
func (m *Model) MoveChar(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.effectiveRowLocked(m.setIdx, m.held|m.oneShot)
	if !ok || len(row.Keys) == 0 {
		return
	}
	n := len(row.Keys)
	m.charIdx = ((m.charIdx+delta)%n + n) % n
}

// ---- Special-mode navigation ----

// MoveSpecialSet cycles across all special sets.
func (m *Model) MoveSpecialSet(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.specialSets)
	if n == 0 {
		return
	}
	m.setIdx = ((m.setIdx+delta)%n + n) % n
	m.charIdx = 0
	m.showSpecialSetName = true
}

// MoveSpecialKey cycles char_idx within the current special set.
func (m *Model) MoveSpecialKey(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setIdx < 0 || m.setIdx >= len(m.specialSets) {
		return
	}
	keys := m.specialSets[m.setIdx].Keys
	if len(keys) == 0 {
		return
	}
	n := len(keys)
	m.charIdx = ((m.charIdx+delta)%n + n) % n
	m.showSpecialSetName = false
}

// ShowSpecialSetName reports whether the set-name banner should render.
func (m *Model) ShowSpecialSetName() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showSpecialSetName
}

// ---- selection & emission ----

// Select emits the currently highlighted key (Chars or Special mode).
func (m *Model) Select() EmitResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	var key KeyDescriptor
	var ok bool
	if m.mode == ModeChars {
		key, ok = m.effectiveKeyLocked(m.setIdx, m.charIdx, m.held|m.oneShot)
	} else {
		if m.setIdx >= 0 && m.setIdx < len(m.specialSets) {
			keys := m.specialSets[m.setIdx].Keys
			if m.charIdx >= 0 && m.charIdx < len(keys) {
				key, ok = keys[m.charIdx], true
			}
		}
	}
	if !ok {
		return EmitResult{}
	}
	return m.emitLocked(key)
}

func (m *Model) effectiveKeyLocked(setIdx, keyIdx int, mask keymap.Mods) (KeyDescriptor, bool) {
	row, ok := m.effectiveRowLocked(setIdx, mask)
	if !ok || keyIdx < 0 || keyIdx >= len(row.Keys) {
		return KeyDescriptor{}, false
	}
	key := row.Keys[keyIdx]
	if key.Kind != DescNA {
		return key, true
	}
	base, ok := m.layers[0]
	if !ok || setIdx < 0 || setIdx >= len(base) {
		return KeyDescriptor{}, false
	}
	baseRow := base[setIdx]
	if baseRow.Default || keyIdx >= len(baseRow.Keys) {
		return KeyDescriptor{}, false
	}
	return baseRow.Keys[keyIdx], true
}

// emitLocked applies the key-emission table of spec.md §4.D.
func (m *Model) emitLocked(key KeyDescriptor) EmitResult {
	switch key.Kind {
	case DescLiteral:
		m.clearOneShot()
		return EmitResult{Bytes: []byte(key.Text)}
	case DescMacro:
		bytes, sawSequence := m.expandMacroLocked(key.Text)
		if sawSequence {
			m.clearOneShot()
		}
		return EmitResult{Bytes: bytes}
	case DescSequence:
		effective := m.effectiveModifiersLocked() | key.Mods
		m.clearOneShot()
		return EmitResult{Bytes: keymap.Encode(key.Sym, effective, m.termMode)}
	case DescModToggle:
		m.oneShot ^= key.Mods
		return EmitResult{}
	case DescInternalCommand:
		m.clearOneShot()
		return EmitResult{Command: key.Text}
	case DescLoadSet:
		m.addCustomSetLocked(strings.TrimPrefix(key.Text, "+"))
		return EmitResult{}
	case DescUnloadSet:
		m.removeCustomSetLocked(strings.TrimPrefix(key.Text, "-"))
		return EmitResult{}
	}
	return EmitResult{}
}

// EmitNavigationKey synthesizes a Back/Space/Tab/Enter keyboard event
// through the keymap encoder, honoring the combined modifier but
// never clearing held modifiers (only one-shots clear, same as Select).
func (m *Model) EmitNavigationKey(sym keymap.Sym) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	effective := m.effectiveModifiersLocked()
	m.clearOneShot()
	return keymap.Encode(sym, effective, m.termMode)
}

// ---- dynamic special-key sets ----

// MakeSetAvailable records a set as discoverable without loading it.
func (m *Model) MakeSetAvailable(name, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available[name] = path
	m.rebuildControlSetLocked()
}

// AddCustomSet parses a .keys file, attaches it, and rebuilds CONTROL.
func (m *Model) AddCustomSet(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCustomSetFileLocked(path)
}

func (m *Model) addCustomSetLocked(name string) {
	path, ok := m.available[name]
	if !ok {
		path = name
	}
	if err := m.addCustomSetFileLocked(path); err != nil {
		m.log.Debug().Err(err).Str("set", name).Msg("failed to load key set")
	}
}

func (m *Model) addCustomSetFileLocked(path string) error {
	name, mask, keys, err := ParseKeySetFile(path)
	if err != nil {
		return err
	}
	m.specialSets = append(m.specialSets, SpecialKeySet{Name: name, FilePath: path, Keys: keys, ActiveModMask: mask})
	m.available[name] = path
	m.loaded[name] = true
	m.rebuildControlSetLocked()
	return nil
}

// RemoveCustomSet detaches a loaded set by name and rebuilds CONTROL.
func (m *Model) RemoveCustomSet(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCustomSetLocked(name)
}

func (m *Model) removeCustomSetLocked(name string) {
	for i, s := range m.specialSets {
		if s.Name == name {
			m.specialSets = append(m.specialSets[:i], m.specialSets[i+1:]...)
			break
		}
	}
	delete(m.loaded, name)
	m.rebuildControlSetLocked()
}

// rebuildControlSetLocked appends one +NAME/-NAME key per available
// set after CONTROL's fixed action keys, invalidating any render cache
// (there is none in this core; the Renderer collaborator re-reads on
// every frame).
func (m *Model) rebuildControlSetLocked() {
	names := make([]string, 0, len(m.available))
	for name := range m.available {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := append([]KeyDescriptor{}, fixedActionKeys...)
	for _, name := range names {
		if m.loaded[name] {
			keys = append(keys, KeyDescriptor{Kind: DescUnloadSet, Text: "-" + name})
		} else {
			keys = append(keys, KeyDescriptor{Kind: DescLoadSet, Text: "+" + name})
		}
	}
	m.specialSets[0].Keys = keys
}

// LoadedSets returns the names currently attached.
func (m *Model) LoadedSets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.loaded))
	for name, ok := range m.loaded {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ControlSetLen reports CONTROL's current key count (exposed for
// tests exercising the self-modifying-menu invariant).
func (m *Model) ControlSetLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.specialSets[0].Keys)
}

// Position returns the current OSK bar placement rule.
func (m *Model) Position() PositionMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// TogglePosition flips between Opposite and Same placement, driven by
// CMD_OSK_TOGGLE_POSITION.
func (m *Model) TogglePosition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position == PositionOpposite {
		m.position = PositionSame
	} else {
		m.position = PositionOpposite
	}
}
