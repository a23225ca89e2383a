package pubsub

import "fmt"

// ChannelStudentEvents carries every stream message concerning one student.
const ChannelStudentEvents = "monitor:student:%s:events"

// AllStudents is the channel segment used for messages with no student scope.
const AllStudents = "all"

// StudentEventsChannel returns the channel name for a student's events.
// An empty id maps to the shared channel.
func StudentEventsChannel(studentID string) string {
	if studentID == "" {
		studentID = AllStudents
	}
	return fmt.Sprintf(ChannelStudentEvents, studentID)
}
