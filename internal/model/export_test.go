package model

// ErrorHandlers returns the number of OnError subscriptions of e.
func ErrorHandlers(e *Entity) int { return e.failed.Len() }
