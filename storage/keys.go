package storage

// Slot keys. Each holds one JSON document.
const (
	KeySession   = "grading_system_user"
	KeyUsers     = "grading_system_users"
	KeyQuestions = "grading_system_questions"
	KeyExams     = "grading_system_exams"
	KeyAttempts  = "grading_system_exam_attempts"
	KeyGrades    = "grading_system_grades"
	KeyMessages  = "grading_system_chat_messages"
	KeyRooms     = "grading_system_chat_rooms"
)

var AllKeys = []string{
	KeySession,
	KeyUsers,
	KeyQuestions,
	KeyExams,
	KeyAttempts,
	KeyGrades,
	KeyMessages,
	KeyRooms,
}
