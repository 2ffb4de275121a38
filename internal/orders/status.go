package orders

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusUpdated   Status = "UPDATED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// CANCELLED and COMPLETED are terminal: once an order reaches either, no
// further write may touch it.
var terminal = map[Status]bool{
	StatusCancelled: true,
	StatusCompleted: true,
}

func (s Status) Terminal() bool { return terminal[s] }

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusUpdated, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}
