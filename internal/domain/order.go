package domain

// Ordering rules shared by every TaskRepository implementation and by the
// client-side collection, which mirrors them locally so that the rendered
// order matches what the backend will report on the next fetch.

// ClampOrder limits order to [0, count].
func ClampOrder(order, count int) int {
	if order < 0 {
		return 0
	}
	if order > count {
		return count
	}
	return order
}

// ShiftForInsert makes room for a task inserted at order. Tasks at or after
// order move down by one.
func ShiftForInsert(tasks []*Task, order int) {
	for _, t := range tasks {
		if t.Order >= order {
			t.Order++
		}
	}
}

// ShiftForMove adjusts siblings when a task moves from one order to another.
// The moving task itself must not be part of tasks.
func ShiftForMove(tasks []*Task, from, to int) {
	switch {
	case from < to:
		for _, t := range tasks {
			if t.Order > from && t.Order <= to {
				t.Order--
			}
		}
	case from > to:
		for _, t := range tasks {
			if t.Order >= to && t.Order < from {
				t.Order++
			}
		}
	}
}

// ShiftForDelete closes the gap left by a task removed at order.
func ShiftForDelete(tasks []*Task, order int) {
	for _, t := range tasks {
		if t.Order >= order {
			t.Order--
		}
	}
}
