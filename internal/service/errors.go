package service

import (
	"fmt"
)

type ErrNotificationNotFound struct {
	error
}

func NewErrNotificationNotFound(id string) *ErrNotificationNotFound {
	return &ErrNotificationNotFound{fmt.Errorf("notification %s not found", id)}
}

type ErrNotificationNotDismissible struct {
	error
}

func NewErrNotificationNotDismissible(id string) *ErrNotificationNotDismissible {
	return &ErrNotificationNotDismissible{fmt.Errorf("notification %s is not dismissible", id)}
}
