package identity

import "time"

// User is a registered Travel Pay account, looked up by phone number.
type User struct {
	ID            string
	Name          string
	Phone         string
	CreatedAt     time.Time
	GroupsCreated int
	TotalSpent    int64
}
