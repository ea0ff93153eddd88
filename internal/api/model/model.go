package model

import "time"

// Job is a posting. AppliedUsers and ShortlistedUsers are only populated when
// requested through Relations and are ordered by application time.
type Job struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	JobType     string    `db:"job_type" json:"job_type"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	AppliedUsers     []User `db:"-" json:"-"`
	ShortlistedUsers []User `db:"-" json:"-"`
}

// HasApplicant reports whether userID is in AppliedUsers
func (j *Job) HasApplicant(userID int64) bool {
	return containsUser(j.AppliedUsers, userID)
}

// HasShortlisted reports whether userID is in ShortlistedUsers
func (j *Job) HasShortlisted(userID int64) bool {
	return containsUser(j.ShortlistedUsers, userID)
}

func containsUser(users []User, id int64) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// User is a candidate account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Age          int       `db:"age" json:"age"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Notification is an in-app message owned by a user
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Relations selects which relationship sets GetJob loads
type Relations struct {
	Applied     bool
	Shortlisted bool
}

// RelationDelta lists user ids to add to a job's relationship sets
type RelationDelta struct {
	Applied     []int64
	Shortlisted []int64
}

// JobFilter narrows job listings
type JobFilter struct {
	Search   string
	Location string
	JobType  string
	Status   string
	PageSize int
	Cursor   *JobCursor
}

// JobCursor is the keyset position for job listing, newest first
type JobCursor struct {
	CreatedAt time.Time
	ID        int64
}

// JobUpdate carries optional job field changes
type JobUpdate struct {
	Title       *string
	Description *string
	Location    *string
	JobType     *string
}

// UserUpdate carries optional user field changes
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Age          *int
}
