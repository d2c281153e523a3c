package entities

// ReminderInterval is the fixed set of reminder cadences a user can pick.
type ReminderInterval string

const (
	ReminderDaily    ReminderInterval = "daily"
	ReminderEveryTwo ReminderInterval = "every_two_days"
	ReminderWeekly   ReminderInterval = "weekly"
	ReminderBiweekly ReminderInterval = "biweekly"
	ReminderMonthly  ReminderInterval = "monthly"
)

// Valid reports whether the interval is one of the enumerated cadences.
func (i ReminderInterval) Valid() bool {
	switch i {
	case ReminderDaily, ReminderEveryTwo, ReminderWeekly, ReminderBiweekly, ReminderMonthly:
		return true
	}
	return false
}

// ReminderSettings is a configuration value, not a persisted row. It is held
// in memory and handed to the reminder scheduler.
type ReminderSettings struct {
	Enabled  bool             `json:"enabled"`
	Interval ReminderInterval `json:"interval"`
	BookIDs  []string         `json:"book_ids"`
}
