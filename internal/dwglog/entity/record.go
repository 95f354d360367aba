package entity

// DrawingRecord is one row of the drawing log.  DwgIndex is the hidden,
// monotonically increasing ordering key; Dwg is the user-facing drawing
// number derived from it (and may be decoupled from it by an overwrite).
type DrawingRecord struct {
	DwgIndex    int64  `json:"dwg_index" gorm:"column:dwg_index;primaryKey;autoIncrement:false"`
	Dwg         string `json:"dwg" gorm:"column:dwg;size:16;not null;uniqueIndex"`
	Part        string `json:"part" gorm:"column:part;size:30"`
	Description string `json:"description" gorm:"column:description;size:40"`
	Date        string `json:"date" gorm:"column:date;size:10;not null"` // MM/DD/YYYY
	Author      string `json:"author" gorm:"column:author;size:64"`
}

func (DrawingRecord) TableName() string {
	return "dwgnos"
}

// Column identifies one of the five editable fields of a record, in the
// order the original log displays them.
type Column int

const (
	ColumnDwg Column = iota
	ColumnPart
	ColumnDescription
	ColumnDate
	ColumnAuthor
)

// Valid reports whether c addresses an editable field.
func (c Column) Valid() bool {
	return c >= ColumnDwg && c <= ColumnAuthor
}

// Name returns the storage column name.
func (c Column) Name() string {
	switch c {
	case ColumnDwg:
		return "dwg"
	case ColumnPart:
		return "part"
	case ColumnDescription:
		return "description"
	case ColumnDate:
		return "date"
	case ColumnAuthor:
		return "author"
	}
	return ""
}

// Value returns the record's current value for column c.
func (r *DrawingRecord) Value(c Column) string {
	switch c {
	case ColumnDwg:
		return r.Dwg
	case ColumnPart:
		return r.Part
	case ColumnDescription:
		return r.Description
	case ColumnDate:
		return r.Date
	case ColumnAuthor:
		return r.Author
	}
	return ""
}
