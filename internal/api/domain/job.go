package domain

// Job status values. The only transition is open -> closed.
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Conflict reasons surfaced to clients
const (
	ReasonAlreadyApplied     = "User already applied"
	ReasonAlreadyShortlisted = "User already shortlisted"
	ReasonNotApplicant       = "User has not applied to this job"
	ReasonJobClosed          = "Job is closed"
	ReasonAlreadyClosed      = "Job is already closed"
	ReasonEmailInUse         = "Email already in use"
)

// Entity names used in NotFound errors
const (
	EntityJob          = "Job"
	EntityUser         = "User"
	EntityNotification = "Notification"
)
