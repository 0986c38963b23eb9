package models

// Operating hours applied when a room record leaves them empty
const (
	DefaultOperatingStart = "08:00"
	DefaultOperatingEnd   = "18:00"
)

// Room represents a bookable meeting room and its weekly operating calendar
type Room struct {
	ID             string `json:"id" validate:"required,max=64,roomid"`
	Name           string `json:"name" validate:"max=200"`
	Capacity       int    `json:"capacity" validate:"gte=0"`
	Location       string `json:"location" validate:"max=200"`
	OperatingStart string `json:"operating_start,omitempty" validate:"omitempty,clock"` // "HH:MM"
	OperatingEnd   string `json:"operating_end,omitempty" validate:"omitempty,clock"`   // "HH:MM", exclusive
	WorksSaturday  bool   `json:"works_saturday"`
	WorksSunday    bool   `json:"works_sunday"`
}

// WithDefaults returns a copy of the room with empty operating hours filled in
func (r Room) WithDefaults() Room {
	if r.OperatingStart == "" {
		r.OperatingStart = DefaultOperatingStart
	}
	if r.OperatingEnd == "" {
		r.OperatingEnd = DefaultOperatingEnd
	}
	return r
}
