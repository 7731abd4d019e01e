package session

import "time"

// Session is one named state tree.
type Session struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	Arrays []IntArray   `gorm:"foreignKey:SessionID"`
	Params []ParamValue `gorm:"foreignKey:SessionID"`
}

// IntArray is one integer array of a tree, e.g. the module type list of the
// allocation table.
type IntArray struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`

	Values []IntValue `gorm:"foreignKey:ArrayID"`
}

// IntValue is one element of an IntArray.
type IntValue struct {
	ID       uint `gorm:"primaryKey"`
	ArrayID  uint `gorm:"index;not null"`
	Position int
	Value    int
}

// ParamValue is one float value of a tree, keyed by parameter identifier.
type ParamValue struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Value     float64
}

func models() []any {
	return []any{&Session{}, &IntArray{}, &IntValue{}, &ParamValue{}}
}
