package domain

// TodoRecord is stored as one element of a JSON array under a single key.
// The "complated" tag matches data already written by earlier clients.
type TodoRecord struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"complated"`
}

// TodoIDStrategy picks the id for a record about to be appended.
type TodoIDStrategy func(existing []TodoRecord) int

// LengthPlusOne numbers a new todo after the current count. Deleting a
// record from the middle and then adding can hand out an id that is
// still in use.
func LengthPlusOne(existing []TodoRecord) int {
	return len(existing) + 1
}

// MaxPlusOne numbers a new todo after the highest id present.
func MaxPlusOne(existing []TodoRecord) int {
	highest := 0

	for _, t := range existing {
		if t.ID > highest {
			highest = t.ID
		}
	}

	return highest + 1
}

func TodoIDStrategyByName(name string) TodoIDStrategy {
	if name == "max" {
		return MaxPlusOne
	}

	return LengthPlusOne
}

func HasTodoID(todos []TodoRecord, id int) bool {
	for _, t := range todos {
		if t.ID == id {
			return true
		}
	}

	return false
}
