package notification

import "fmt"

func AppliedMessage(title string) string {
	return fmt.Sprintf("You have successfully applied for the job: %s", title)
}

func ShortlistedMessage(title string) string {
	return fmt.Sprintf("You have been shortlisted for the job: %s", title)
}

func ClosedMessage(title string) string {
	return fmt.Sprintf("Job \"%s\" has been closed.", title)
}
