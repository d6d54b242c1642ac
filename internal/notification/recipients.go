package notification

import "tutorbook_backend/internal/model"

// Recipients resolves which participants an event addresses.
// Completion and payment events fan out to both parties; a cancellation
// goes only to the participant who did not initiate it.
func Recipients(e Event) []int64 {
	tutor := e.Reservation.TutorID
	student := e.Reservation.StudentID

	switch e.Type {
	case EventReservationCreated:
		return []int64{tutor}
	case EventReservationConfirmed:
		return []int64{student}
	case EventReservationCompleted, EventPaymentCompleted:
		return []int64{tutor, student}
	case EventReservationCancelled:
		if e.ActorRole == model.RoleTutor {
			return []int64{student}
		}
		return []int64{tutor}
	}
	return nil
}
