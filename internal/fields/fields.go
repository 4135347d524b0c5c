// Package fields describes the fixed set of input fields the logon surface
// shows for this provider. The table is immutable and shared read-only.
package fields

import "errors"

type Kind int

const (
	KindImage Kind = iota
	KindLabel
	KindUsernameInput
	KindPasswordInput
	KindSubmitButton
)

type Visibility int

const (
	// TileOnly fields appear only on the selected tile.
	TileOnly Visibility = iota
	// TileAndSelected fields appear on the tile and in the selected view.
	TileAndSelected
)

type Interactive int

const (
	InteractiveNone Interactive = iota
	InteractiveFocused
)

// Tag marks a field with a well-known role so the host can map it onto its
// own field machinery.
type Tag string

const (
	TagNone     Tag = ""
	TagUsername Tag = "logon-username"
	TagPassword Tag = "logon-password"
)

type Descriptor struct {
	Kind        Kind
	Visibility  Visibility
	Interactive Interactive
	Label       string
	Tag         Tag
}

var ErrOutOfRange = errors.New("field index out of range")

// The five provider fields, in display order. The submit button always sits
// directly after the password input so AdjacentTo can point at index-1.
var table = [...]Descriptor{
	{Kind: KindImage, Visibility: TileOnly, Interactive: InteractiveNone, Label: "Logo"},
	{Kind: KindLabel, Visibility: TileAndSelected, Interactive: InteractiveNone, Label: "Vivendi-Anmeldung"},
	{Kind: KindUsernameInput, Visibility: TileOnly, Interactive: InteractiveFocused, Label: "Benutzername", Tag: TagUsername},
	{Kind: KindPasswordInput, Visibility: TileOnly, Interactive: InteractiveNone, Label: "Kennwort", Tag: TagPassword},
	{Kind: KindSubmitButton, Visibility: TileOnly, Interactive: InteractiveNone, Label: "Anmelden"},
}

// Well-known indices into the table.
const (
	IndexImage = iota
	IndexLabel
	IndexUsername
	IndexPassword
	IndexSubmit
)

func Count() int { return len(table) }

func At(index int) (Descriptor, error) {
	if index < 0 || index >= len(table) {
		return Descriptor{}, ErrOutOfRange
	}
	return table[index], nil
}

// AdjacentTo returns the field a submit button is attached to, which is
// always the immediately preceding field.
func AdjacentTo(index int) (int, error) {
	d, err := At(index)
	if err != nil {
		return 0, err
	}
	if d.Kind != KindSubmitButton {
		return 0, ErrOutOfRange
	}
	return index - 1, nil
}

// All returns a copy of the table for hosts that render every field at once.
func All() []Descriptor {
	out := make([]Descriptor, len(table))
	copy(out, table[:])
	return out
}
