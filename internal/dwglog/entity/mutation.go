package entity

// MutationKind classifies the single write the edit validator proposes.
type MutationKind string

const (
	// MutationDelete removes the whole row selected by Dwg.
	MutationDelete MutationKind = "delete"
	// MutationUpdate sets one or more columns on the row selected by Dwg.
	MutationUpdate MutationKind = "update"
	// MutationUpdateByIndex sets columns on the row selected by DwgIndex.
	// Used when the drawing number itself is being overwritten, so the
	// number can no longer serve as the row selector.
	MutationUpdateByIndex MutationKind = "update_by_index"
	// MutationRenumber sets a new dwg_index together with the derived
	// drawing number and synchronized part number, atomically.
	MutationRenumber MutationKind = "renumber"
)

// Mutation is the structured write the validator hands back to its caller.
// The validator never touches storage; only the record store renders a
// Mutation into parameterized statements, inside one transaction.
type Mutation struct {
	Kind MutationKind `json:"kind"`

	// Row selectors.
	Dwg      string `json:"dwg,omitempty"`
	DwgIndex int64  `json:"dwg_index,omitempty"`

	// Column values to set, keyed by editable column.
	Set map[Column]string `json:"set,omitempty"`

	// NewIndex carries the replacement dwg_index for MutationRenumber.
	NewIndex int64 `json:"new_index,omitempty"`
}
