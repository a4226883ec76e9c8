package entity

// Kind tells the SQL store what scan target a column needs.  The registry is
// built once at startup so projecting a row stays a plain lookup+copy.
type Kind uint8

const (
	KindInt Kind = iota
	KindString
	KindBool
	KindFloat
	KindJSON
)

// Column describes one selectable field of a table.
type Column struct {
	Name string
	Kind Kind
}

// Table is a static descriptor of one entity table: its SQL name and the
// full set of selectable columns.
type Table struct {
	Name    string
	Columns []Column
	byName  map[string]Column
}

// NewTable builds a descriptor and its lookup index.
func NewTable(name string, cols ...Column) Table {
	t := Table{Name: name, Columns: cols, byName: make(map[string]Column, len(cols))}
	for _, c := range cols {
		t.byName[c.Name] = c
	}
	return t
}

// HasColumn reports whether the table registered a column with this name.
func (t Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns the descriptor for a registered column.
func (t Table) Column(name string) (Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// FieldNames returns every registered column name in declaration order.
func (t Table) FieldNames() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, c.Name)
	}
	return out
}

// Table descriptors for the whole domain.  These mirror the migration
// schema: integer identity, created_at/updated_at unix seconds and a flags
// column used as an enable/disable bit.
var (
	// Users are fleet owners: they create Schedules and manage the orders
	// placed against them.
	Users = NewTable("Users",
		Column{"id", KindInt},
		Column{"name", KindString},
		Column{"organization", KindString},
		Column{"description", KindString},
		Column{"login", KindString},
		Column{"password", KindString},
		Column{"email", KindString},
		Column{"email_confirm", KindBool},
		Column{"email_confirm_key", KindString},
		Column{"phone", KindString},
		Column{"phone_confirm", KindBool},
		Column{"country_id", KindInt},
		Column{"city_id", KindInt},
		Column{"address", KindString},
		Column{"mail_agreement", KindBool},
		Column{"flags", KindInt},
		Column{"data", KindJSON},
		Column{"created_at", KindInt},
		Column{"updated_at", KindInt},
	)

	// Customers are end users placing orders against published schedules.
	Customers = NewTable("Customers",
		Column{"id", KindInt},
		Column{"name", KindString},
		Column{"login", KindString},
		Column{"password", KindString},
		Column{"email", KindString},
		Column{"email_confirm", KindBool},
		Column{"email_confirm_key", KindString},
		Column{"phone", KindString},
		Column{"phone_confirm", KindBool},
		Column{"mail_agreement", KindBool},
		Column{"address", KindString},
		Column{"flags", KindInt},
		Column{"data", KindJSON},
		Column{"created_at", KindInt},
		Column{"updated_at", KindInt},
	)

	// Schedules belong to exactly one creating user; the name doubles as a
	// globally unique public link.
	Schedules = NewTable("Schedules",
		Column{"id", KindInt},
		Column{"name", KindString},
		Column{"description", KindString},
		Column{"email", KindString},
		Column{"phone", KindString},
		Column{"country_id", KindInt},
		Column{"city_id", KindInt},
		Column{"address", KindString},
		Column{"creater_id", KindInt},
		Column{"activate", KindBool},
		Column{"flags", KindInt},
		Column{"data", KindJSON},
		Column{"created_at", KindInt},
		Column{"updated_at", KindInt},
	)

	// ScheduleDetails are the bookable time slots of one schedule.
	ScheduleDetails = NewTable("ScheduleDetails",
		Column{"id", KindInt},
		Column{"time", KindInt},
		Column{"description", KindString},
		Column{"members", KindInt},
		Column{"price", KindFloat},
		Column{"schedule_id", KindInt},
		Column{"flags", KindInt},
		Column{"created_at", KindInt},
		Column{"updated_at", KindInt},
	)

	// Orders are bookings by a customer against one schedule slot.
	Orders = NewTable("Orders",
		Column{"id", KindInt},
		Column{"time", KindInt},
		Column{"description", KindString},
		Column{"status", KindString},
		Column{"payment", KindBool},
		Column{"auto_confirm", KindBool},
		Column{"customer_id", KindInt},
		Column{"schedule_id", KindInt},
		Column{"flags", KindInt},
		Column{"created_at", KindInt},
		Column{"updated_at", KindInt},
	)

	// Countries and Cities are plain reference lookups.
	Countries = NewTable("Countries",
		Column{"id", KindInt},
		Column{"label", KindString},
		Column{"flags", KindInt},
		Column{"created_at", KindInt},
		Column{"updated_at", KindInt},
	)
	Cities = NewTable("Cities",
		Column{"id", KindInt},
		Column{"label", KindString},
		Column{"flags", KindInt},
		Column{"created_at", KindInt},
		Column{"updated_at", KindInt},
	)
)

// Order status values.  Transitions are enforced by the order model:
// booking -> confirmed|rejected, confirmed -> paid; paid and rejected are
// terminal.
const (
	OrderStatusBooking   = "booking"
	OrderStatusConfirmed = "confirmed"
	OrderStatusRejected  = "rejected"
	OrderStatusPaid      = "paid"
)

// OrderStatusAllowed reports whether a status transition is legal.  Equal
// statuses are allowed so idempotent updates do not fail.
func OrderStatusAllowed(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case OrderStatusBooking:
		return to == OrderStatusConfirmed || to == OrderStatusRejected
	case OrderStatusConfirmed:
		return to == OrderStatusPaid
	}
	return false
}
