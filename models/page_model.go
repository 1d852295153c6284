package models

// Page is a client view the dashboard can point to.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageExams     Page = "exams"
	PageGrades    Page = "grades"
	PageStudents  Page = "students"
	PageChat      Page = "chat"
	PageProfile   Page = "profile"
)

func PagesFor(role Role) []Page {
	if role == RoleDoctor {
		return []Page{PageDashboard, PageStudents, PageGrades, PageChat}
	}
	return []Page{PageDashboard, PageExams, PageGrades, PageChat, PageProfile}
}
